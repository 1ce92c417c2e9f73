package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// statusSummary hides the overdue count for terminal statuses, where it
// has no meaning.
type statusSummary struct {
	Status  requestdomain.Status `json:"status"`
	Label   string               `json:"label"`
	Total   int                  `json:"total"`
	Overdue *int                 `json:"overdue,omitempty"`
}

type listManagerRequestsQuery struct {
	Department string `form:"department"`
	Status     string `form:"status"`
	Unread     string `form:"unread"`
	Query      string `form:"q"`
}

func (s *Server) DepartmentSummary(c *gin.Context) {
	counts, err := s.requestSvc.CountsByStatusForDept(c.Request.Context(), trimmedParam(c, "slug"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]statusSummary, 0, len(counts))
	for _, sc := range counts {
		row := statusSummary{Status: sc.Status, Label: sc.Label, Total: sc.Total}
		if !sc.Status.Terminal() {
			overdue := sc.Overdue
			row.Overdue = &overdue
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) ListDepartmentRequests(c *gin.Context) {
	rows, err := s.requestSvc.ListForDepartment(c.Request.Context(), trimmedParam(c, "slug"), c.Query("status"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (s *Server) ListManagerRequests(c *gin.Context) {
	var query listManagerRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	unread, err := parseOptionalBool(query.Unread)
	if err != nil {
		AbortWithError(c, newValidationError("unread", "invalid_unread", "invalid unread"))
		return
	}

	rows, err := s.requestSvc.ListForManager(c.Request.Context(), requestdomain.ManagerFilter{
		Department: query.Department,
		Status:     query.Status,
		OnlyUnread: unread != nil && *unread,
		Query:      query.Query,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": requestdomain.GroupByBatch(rows)})
}

func (s *Server) UpdateRequestStatus(c *gin.Context) {
	id, ok := parsePositiveInt64(c.Param("id"))
	if !ok {
		AbortWithError(c, requestdomain.ErrInvalidID)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.requestSvc.UpdateStatus(c.Request.Context(), requestdomain.UpdateStatusRequest{
		ID:     id,
		Status: req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) UpdateBatchStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.requestSvc.UpdateStatusForBatch(c.Request.Context(), requestdomain.UpdateBatchStatusRequest{
		BatchID: trimmedParam(c, "batch_id"),
		Status:  req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) Dashboard(c *gin.Context) {
	dash, err := s.requestSvc.Dashboard(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
