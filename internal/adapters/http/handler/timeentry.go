package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/hr-attendance/internal/adapters/spreadsheet"
	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
)

const defaultMaxUploadBytes int64 = 10 << 20

var allowedUploadTypes = map[string]struct{}{
	spreadsheet.ContentType:    {},
	"application/vnd.ms-excel": {},
}

// TimeEntryHandler は勤怠記録 API の HTTP ハンドラーです。
type TimeEntryHandler struct {
	svc            attendance.UseCase
	maxUploadBytes int64
	now            func() time.Time
}

// TimeEntryOption は TimeEntryHandler の任意設定です。
type TimeEntryOption func(*TimeEntryHandler)

// WithMaxUploadBytes はアップロードできるファイルサイズの上限を設定します。
func WithMaxUploadBytes(n int64) TimeEntryOption {
	return func(h *TimeEntryHandler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// WithNow はテンプレートのファイル名に使う現在時刻の取得元を差し替えます。
func WithNow(now func() time.Time) TimeEntryOption {
	return func(h *TimeEntryHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewTimeEntryHandler は TimeEntryHandler を生成します。
func NewTimeEntryHandler(svc attendance.UseCase, opts ...TimeEntryOption) *TimeEntryHandler {
	h := &TimeEntryHandler{svc: svc, maxUploadBytes: defaultMaxUploadBytes, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Create は勤怠記録を 1 件作成します。
func (h *TimeEntryHandler) Create(c *gin.Context) {
	var req createTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "", err.Error())
		return
	}

	created, err := h.svc.CreateTimeEntry(c.Request.Context(), attendance.CreateTimeEntryInput{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		ClockIn:    req.ClockIn,
		ClockOut:   req.ClockOut,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTimeEntryResponse(created))
}

// Get は ID で勤怠記録を取得します。
func (h *TimeEntryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.svc.GetTimeEntry(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTimeEntryResponse(found))
}

// Update は勤怠記録を更新します。
func (h *TimeEntryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "", err.Error())
		return
	}

	updated, err := h.svc.UpdateTimeEntry(c.Request.Context(), attendance.UpdateTimeEntryInput{
		ID:          id,
		EmployeeID:  req.EmployeeID,
		Date:        req.Date,
		ClockIn:     req.ClockIn,
		ClockOut:    req.ClockOut.Value,
		ClockOutSet: req.ClockOut.Set,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTimeEntryResponse(updated))
}

// Delete は勤怠記録を削除します。
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTimeEntry(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDelete は複数の勤怠記録を削除します。
func (h *TimeEntryHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ids", "", "ids must be a non-empty array")
		return
	}

	res, err := h.svc.BulkDeleteTimeEntries(c.Request.Context(), req.IDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBulkDeleteResponse(res))
}

// List は条件に一致する勤怠記録を取得します。
func (h *TimeEntryHandler) List(c *gin.Context) {
	in, ok := listInput(c)
	if !ok {
		return
	}

	res, err := h.svc.ListTimeEntries(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListTimeEntriesResponse(res))
}

// ListByEmployee は社員ごとの勤怠記録を取得します。
func (h *TimeEntryHandler) ListByEmployee(c *gin.Context) {
	employeeID, ok := pathID(c, "employeeId")
	if !ok {
		return
	}
	in, ok := listInput(c)
	if !ok {
		return
	}

	res, err := h.svc.ListTimeEntriesByEmployee(c.Request.Context(), employeeID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListTimeEntriesResponse(res))
}

// ListByDateRange は期間内の勤怠記録を取得します。
func (h *TimeEntryHandler) ListByDateRange(c *gin.Context) {
	in, ok := listInput(c)
	if !ok {
		return
	}

	res, err := h.svc.ListTimeEntriesByDateRange(c.Request.Context(), c.Query("startDate"), c.Query("endDate"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListTimeEntriesResponse(res))
}

// Statistics はステータス別の集計を返します。
func (h *TimeEntryHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.GetStatistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatisticsResponse(stats))
}

// Template は取り込み用テンプレートをダウンロードさせます。
func (h *TimeEntryHandler) Template(c *gin.Context) {
	data, err := spreadsheet.Template()
	if err != nil {
		writeError(c, err)
		return
	}

	filename := spreadsheet.TemplateFilename(h.now().UTC())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, spreadsheet.ContentType, data)
}

// Import はアップロードされたブックを解析し、一括取り込みを行います。
func (h *TimeEntryHandler) Import(c *gin.Context) {
	// multipart の境界やヘッダー分の余裕を持たせる
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "file exceeds the upload limit"})
			return
		}
		badRequest(c, "file", "", "no file uploaded")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "file exceeds the upload limit"})
		return
	}
	if !acceptedUpload(fileHeader.Header.Get("Content-Type"), fileHeader.Filename) {
		badRequest(c, "file", fileHeader.Filename, "file must be an Excel workbook (.xlsx or .xls)")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, err)
		return
	}

	candidates, err := spreadsheet.Parse(data)
	if err != nil {
		writeError(c, err)
		return
	}

	report, err := h.svc.ImportTimeEntries(c.Request.Context(), candidates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toImportResponse(report))
}

func acceptedUpload(contentType, filename string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if _, ok := allowedUploadTypes[mediaType]; ok {
		return true
	}
	if mediaType != "" && mediaType != "application/octet-stream" {
		return false
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return true
	default:
		return false
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name, raw, "must be a positive integer")
		return 0, false
	}
	return id, true
}

func listInput(c *gin.Context) (attendance.ListTimeEntriesInput, bool) {
	in := attendance.ListTimeEntriesInput{
		PageToken: c.Query("pageToken"),
		SortBy:    c.Query("sortBy"),
		DateFrom:  c.Query("dateFrom"),
		DateTo:    c.Query("dateTo"),
	}

	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			badRequest(c, "pageSize", raw, "must be a non-negative integer")
			return in, false
		}
		in.PageSize = size
	}
	if raw := c.Query("employeeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "employeeId", raw, "must be a positive integer")
			return in, false
		}
		in.EmployeeID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status, err := attendance.ParseStatus(raw)
		if err != nil {
			writeError(c, err)
			return in, false
		}
		in.Status = &status
	}
	return in, true
}
