package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func toHTTPError(err error) (int, errorResponse) {
	if verr, ok := attendance.AsValidationError(err); ok {
		if len(verr.Messages) > 0 {
			return http.StatusBadRequest, errorResponse{Error: verr.Reason, Details: verr.Messages}
		}
		return http.StatusBadRequest, errorResponse{Error: verr.Error()}
	}

	switch {
	case errors.Is(err, attendance.ErrEmptyInput),
		errors.Is(err, attendance.ErrInvalidID),
		errors.Is(err, attendance.ErrInvalidPageToken),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, attendance.ErrTimeEntryNotFound), errors.Is(err, employee.ErrEmployeeNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, attendance.ErrDuplicateEntry):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}
}

// writeError はエラーを HTTP ステータスに変換して応答します。5xx の原因はアクセスログに残します。
func writeError(c *gin.Context, err error) {
	status, body := toHTTPError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, field, value, reason string) {
	writeError(c, &attendance.ValidationError{Field: field, Value: value, Reason: reason})
}
