package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/hr-attendance/internal/core/employee"
)

// EmployeeHandler は社員参照 API の HTTP ハンドラーです。
type EmployeeHandler struct {
	svc employee.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// Get は社員を取得します。
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.svc.GetEmployee(c.Request.Context(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(found))
}

// List は社員の一覧を取得します。
func (h *EmployeeHandler) List(c *gin.Context) {
	in := employee.ListEmployeesInput{PageToken: c.Query("pageToken")}
	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "pageSize", raw, "must be an integer")
			return
		}
		in.PageSize = size
	}
	if raw := c.Query("status"); raw != "" {
		status := employee.Status(raw)
		in.Status = &status
	}

	res, err := h.svc.ListEmployees(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	out := listEmployeesResponse{Data: make([]employeeResponse, 0, len(res.Employees)), NextPageToken: res.NextPageToken}
	for _, e := range res.Employees {
		out.Data = append(out.Data, toEmployeeResponse(e))
	}
	c.JSON(http.StatusOK, out)
}
