package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
)

type statusView struct {
	Key      requestdomain.Status `json:"key"`
	Label    string               `json:"label"`
	Terminal bool                 `json:"terminal"`
}

func (s *Server) ListDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.departments.Get().Departments})
}

func (s *Server) ListStatuses(c *gin.Context) {
	out := make([]statusView, 0, len(requestdomain.Statuses))
	for _, st := range requestdomain.Statuses {
		out = append(out, statusView{Key: st, Label: st.Label(), Terminal: st.Terminal()})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
