package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/smallbiznis/stockroom/internal/activity/domain"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/authorization"
	cartdomain "github.com/smallbiznis/stockroom/internal/cart/domain"
	commentdomain "github.com/smallbiznis/stockroom/internal/comment/domain"
	materialdomain "github.com/smallbiznis/stockroom/internal/material/domain"
	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
	settingdomain "github.com/smallbiznis/stockroom/internal/setting/domain"
	pkgdb "github.com/smallbiznis/stockroom/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Missing []string          `json:"missing_columns,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var importErr *materialdomain.ImportError
	if errors.As(err, &importErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: importErr.Error(),
			Errors: []ValidationError{
				{Field: "file", Code: "invalid_import", Message: importErr.Error()},
			},
			Missing: importErr.Missing,
		}
	}

	if target := validationSentinel(err); target != nil {
		code := target.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidPIN),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: unauthorizedMessage(err),
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, requestdomain.ErrIllegalTransition),
		errors.Is(err, cartdomain.ErrCartBusy):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case pkgdb.IsBusyErr(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "unavailable",
			Message: "database busy, retry",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the error type and code recorded on the
// request log line.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status == http.StatusServiceUnavailable {
		return payload.Type, "database_busy"
	}
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if status == http.StatusConflict {
		return payload.Type, conflictCode(err)
	}
	return payload.Type, strings.ReplaceAll(payload.Message, " ", "_")
}

func conflictCode(err error) string {
	switch {
	case errors.Is(err, requestdomain.ErrIllegalTransition):
		return requestdomain.ErrIllegalTransition.Error()
	case errors.Is(err, cartdomain.ErrCartBusy):
		return cartdomain.ErrCartBusy.Error()
	default:
		return "conflict"
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, authdomain.ErrInvalidPIN):
		return "invalid pin"
	case errors.Is(err, authdomain.ErrSessionExpired):
		return "session expired"
	default:
		return "unauthorized"
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

var validationErrs = []error{
	ErrInvalidRequest,
	requestdomain.ErrInvalidDepartment,
	requestdomain.ErrEmptyBatch,
	requestdomain.ErrInvalidQuantity,
	requestdomain.ErrInvalidItemType,
	requestdomain.ErrMaterialRequired,
	requestdomain.ErrFreeTextRequired,
	requestdomain.ErrInvalidID,
	requestdomain.ErrInvalidBatchID,
	requestdomain.ErrInvalidStatus,
	materialdomain.ErrInvalidDescription,
	materialdomain.ErrInvalidCode,
	materialdomain.ErrInvalidID,
	materialdomain.ErrInvalidImport,
	commentdomain.ErrInvalidRole,
	commentdomain.ErrInvalidText,
	commentdomain.ErrInvalidRequestID,
	cartdomain.ErrInvalidCartID,
	cartdomain.ErrInvalidDepartment,
	cartdomain.ErrDepartmentRequired,
	cartdomain.ErrEmptyCart,
	cartdomain.ErrInvalidItemType,
	cartdomain.ErrInvalidQuantity,
	cartdomain.ErrMaterialRequired,
	cartdomain.ErrMaterialNotFound,
	cartdomain.ErrFreeTextRequired,
	cartdomain.ErrInvalidIndex,
	authdomain.ErrPINRequired,
	authdomain.ErrPINMismatch,
	authdomain.ErrInvalidName,
	settingdomain.ErrInvalidKey,
	activitydomain.ErrInvalidAction,
	activitydomain.ErrInvalidPageToken,
}

// validationSentinel returns the known validation error err wraps, if any.
func validationSentinel(err error) error {
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, requestdomain.ErrNotFound),
		errors.Is(err, materialdomain.ErrNotFound),
		errors.Is(err, commentdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	switch {
	case code == "invalid_request":
		return "request"
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	case strings.HasSuffix(code, "_required"):
		return strings.TrimSuffix(code, "_required")
	case code == "pin_mismatch":
		return "confirm"
	case code == "empty_cart", code == "empty_batch":
		return "items"
	default:
		return ""
	}
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "pin_mismatch":
		return "pin and confirmation do not match"
	case "empty_cart":
		return "add at least one item before submitting"
	case "department_required":
		return "select a department before submitting"
	default:
		if strings.HasSuffix(code, "_required") {
			return "value is required"
		}
		return "invalid value"
	}
}
