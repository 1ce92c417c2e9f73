package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	materialdomain "github.com/smallbiznis/stockroom/internal/material/domain"
)

const maxImportBytes = 10 << 20

type CreateMaterialRequest struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

func (s *Server) ListMaterials(c *gin.Context) {
	items, err := s.materialSvc.List(c.Request.Context(), materialdomain.ListMaterialsRequest{
		Query: c.Query("q"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateMaterial(c *gin.Context) {
	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.materialSvc.Add(c.Request.Context(), materialdomain.AddMaterialRequest{
		Description: req.Description,
		Code:        req.Code,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if !res.Inserted {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func (s *Server) ImportMaterials(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "upload a .csv, .txt, .xlsx or .xlsm file"))
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	res, err := s.materialSvc.Import(c.Request.Context(), materialdomain.ImportRequest{
		Filename: header.Filename,
		Content:  file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) MaterialsTemplateCSV(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="materials_template.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", s.materialSvc.Template())
}

func (s *Server) MaterialsTemplateXLSX(c *gin.Context) {
	body, err := s.materialSvc.TemplateXLSX()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="materials_template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
}

func trimmedParam(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Param(name))
}
