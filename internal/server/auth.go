package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
)

type UnlockRequest struct {
	PIN  string `json:"pin"`
	Name string `json:"name"`
}

type ChangePINRequest struct {
	PIN     string `json:"pin"`
	Confirm string `json:"confirm"`
}

func (s *Server) Unlock(c *gin.Context) {
	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, err := s.authsvc.Unlock(c.Request.Context(), authdomain.UnlockRequest{
		PIN:  req.PIN,
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, session)
}

func (s *Server) Lock(c *gin.Context) {
	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"role": actorRole(c),
		"name": actorName(c),
	})
}

func (s *Server) ChangePIN(c *gin.Context) {
	var req ChangePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.ChangePIN(c.Request.Context(), authdomain.ChangePINRequest{
		PIN:     req.PIN,
		Confirm: req.Confirm,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
