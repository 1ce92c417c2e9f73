package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	commentdomain "github.com/smallbiznis/stockroom/internal/comment/domain"
)

type PostCommentRequest struct {
	Text       string `json:"text"`
	AuthorName string `json:"author_name"`
}

func (s *Server) ListComments(c *gin.Context) {
	id, ok := parsePositiveInt64(c.Param("id"))
	if !ok {
		AbortWithError(c, commentdomain.ErrInvalidRequestID)
		return
	}
	comments, err := s.commentSvc.List(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comments})
}

// PostComment writes as the caller's role. A manager's session name wins
// over any author_name in the body, and a manager reply marks the thread
// read on the manager side.
func (s *Server) PostComment(c *gin.Context) {
	id, ok := parsePositiveInt64(c.Param("id"))
	if !ok {
		AbortWithError(c, commentdomain.ErrInvalidRequestID)
		return
	}
	var req PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role := commentdomain.RoleRequestor
	author := strings.TrimSpace(req.AuthorName)
	if actorRole(c) == authdomain.RoleManager {
		role = commentdomain.RoleManager
		if name := actorName(c); name != "" {
			author = name
		}
	}

	comment, err := s.commentSvc.Post(c.Request.Context(), commentdomain.PostCommentRequest{
		RequestID:   id,
		Role:        role,
		Text:        req.Text,
		AuthorName:  author,
		MarkOwnRead: role == commentdomain.RoleManager,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) MarkCommentsRead(c *gin.Context) {
	id, ok := parsePositiveInt64(c.Param("id"))
	if !ok {
		AbortWithError(c, commentdomain.ErrInvalidRequestID)
		return
	}

	role := commentdomain.RoleRequestor
	if actorRole(c) == authdomain.RoleManager {
		role = commentdomain.RoleManager
	}
	if err := s.commentSvc.MarkRead(c.Request.Context(), id, role); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
