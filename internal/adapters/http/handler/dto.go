package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
)

type timeEntryResponse struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	Date       string    `json:"date"`
	ClockIn    string    `json:"clockIn"`
	ClockOut   *string   `json:"clockOut"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type listTimeEntriesResponse struct {
	Data          []timeEntryResponse `json:"data"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
	TotalCount    int64               `json:"totalCount"`
}

type createTimeEntryRequest struct {
	EmployeeID int64   `json:"employeeId"`
	Date       string  `json:"date"`
	ClockIn    string  `json:"clockIn"`
	ClockOut   *string `json:"clockOut"`
}

type updateTimeEntryRequest struct {
	EmployeeID *int64         `json:"employeeId"`
	Date       *string        `json:"date"`
	ClockIn    *string        `json:"clockIn"`
	ClockOut   optionalString `json:"clockOut"`
}

// optionalString は「未指定」と「null 指定」を区別します。
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("clockOut must be a string or null: %w", err)
	}
	o.Value = &s
	return nil
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type bulkDeleteResponse struct {
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

type importFailureResponse struct {
	Row        int    `json:"row"`
	EmployeeID int64  `json:"employeeId"`
	Date       string `json:"date"`
	Error      string `json:"error"`
}

type importResponse struct {
	Message  string                  `json:"message"`
	Total    int                     `json:"total"`
	Imported int                     `json:"imported"`
	Failed   int                     `json:"failed"`
	Errors   []importFailureResponse `json:"errors"`
}

type statusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type statisticsResponse struct {
	Total    int64                 `json:"total"`
	ByStatus []statusCountResponse `json:"byStatus"`
}

type employeeResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	HiredAt   *string   `json:"hiredAt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listEmployeesResponse struct {
	Data          []employeeResponse `json:"data"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

func toTimeEntryResponse(e *attendance.TimeEntry) timeEntryResponse {
	return timeEntryResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Date:       e.Date,
		ClockIn:    e.ClockIn,
		ClockOut:   e.ClockOut,
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toListTimeEntriesResponse(res *attendance.ListTimeEntriesResult) listTimeEntriesResponse {
	out := listTimeEntriesResponse{
		Data:          make([]timeEntryResponse, 0, len(res.Entries)),
		NextPageToken: res.NextPageToken,
		TotalCount:    res.TotalCount,
	}
	for _, e := range res.Entries {
		out.Data = append(out.Data, toTimeEntryResponse(e))
	}
	return out
}

func toImportResponse(report *attendance.ImportReport) importResponse {
	out := importResponse{
		Message:  fmt.Sprintf("Import completed: %d succeeded, %d failed", report.Imported, report.Failed),
		Total:    report.Total,
		Imported: report.Imported,
		Failed:   report.Failed,
		Errors:   make([]importFailureResponse, 0, len(report.Errors)),
	}
	for _, f := range report.Errors {
		out.Errors = append(out.Errors, importFailureResponse{Row: f.Row, EmployeeID: f.EmployeeID, Date: f.Date, Error: f.Error})
	}
	return out
}

func toBulkDeleteResponse(res *attendance.BulkDeleteResult) bulkDeleteResponse {
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	return bulkDeleteResponse{Deleted: res.Deleted, Failed: res.Failed, Errors: errs}
}

func toStatisticsResponse(stats *attendance.Statistics) statisticsResponse {
	out := statisticsResponse{Total: stats.Total, ByStatus: make([]statusCountResponse, 0, len(stats.ByStatus))}
	for _, sc := range stats.ByStatus {
		out.ByStatus = append(out.ByStatus, statusCountResponse{Status: string(sc.Status), Count: sc.Count})
	}
	return out
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	out := employeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.HiredAt != nil {
		hired := e.HiredAt.Format(time.DateOnly)
		out.HiredAt = &hired
	}
	return out
}
