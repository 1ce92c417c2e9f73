package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/smallbiznis/stockroom/internal/cart/domain"
)

type SetCartDepartmentRequest struct {
	Department string `json:"department"`
}

func (s *Server) GetCart(c *gin.Context) {
	cart, err := s.cartSvc.Get(c.Request.Context(), cartID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) SetCartDepartment(c *gin.Context) {
	var req SetCartDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.cartSvc.SetDepartment(c.Request.Context(), cartID(c), req.Department)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) AddCartItem(c *gin.Context) {
	var req cartdomain.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cart, err := s.cartSvc.AddItem(c.Request.Context(), cartID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) RemoveCartItem(c *gin.Context) {
	index, err := strconv.Atoi(trimmedParam(c, "index"))
	if err != nil {
		AbortWithError(c, cartdomain.ErrInvalidIndex)
		return
	}

	cart, err := s.cartSvc.RemoveItem(c.Request.Context(), cartID(c), index)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) ClearCart(c *gin.Context) {
	if err := s.cartSvc.Clear(c.Request.Context(), cartID(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) SubmitCart(c *gin.Context) {
	res, err := s.cartSvc.Submit(c.Request.Context(), cartID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
