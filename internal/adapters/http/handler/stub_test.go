package handler

import (
	"context"

	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
)

type stubTimeEntryUseCase struct {
	createInput attendance.CreateTimeEntryInput
	createOut   *attendance.TimeEntry
	createErr   error

	getID  int64
	getOut *attendance.TimeEntry
	getErr error

	updateInput attendance.UpdateTimeEntryInput
	updateOut   *attendance.TimeEntry
	updateErr   error

	deleteID  int64
	deleteErr error

	bulkIDs []int64
	bulkOut *attendance.BulkDeleteResult
	bulkErr error

	importInput []attendance.Candidate
	importOut   *attendance.ImportReport
	importErr   error

	listInput      attendance.ListTimeEntriesInput
	listEmployeeID int64
	listStart      string
	listEnd        string
	listOut        *attendance.ListTimeEntriesResult
	listErr        error
	statsOut       *attendance.Statistics
	statsErr       error
	calls          int
}

func (s *stubTimeEntryUseCase) CreateTimeEntry(_ context.Context, in attendance.CreateTimeEntryInput) (*attendance.TimeEntry, error) {
	s.calls++
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubTimeEntryUseCase) GetTimeEntry(_ context.Context, id int64) (*attendance.TimeEntry, error) {
	s.calls++
	s.getID = id
	return s.getOut, s.getErr
}

func (s *stubTimeEntryUseCase) UpdateTimeEntry(_ context.Context, in attendance.UpdateTimeEntryInput) (*attendance.TimeEntry, error) {
	s.calls++
	s.updateInput = in
	return s.updateOut, s.updateErr
}

func (s *stubTimeEntryUseCase) DeleteTimeEntry(_ context.Context, id int64) error {
	s.calls++
	s.deleteID = id
	return s.deleteErr
}

func (s *stubTimeEntryUseCase) BulkDeleteTimeEntries(_ context.Context, ids []int64) (*attendance.BulkDeleteResult, error) {
	s.calls++
	s.bulkIDs = ids
	return s.bulkOut, s.bulkErr
}

func (s *stubTimeEntryUseCase) ImportTimeEntries(_ context.Context, candidates []attendance.Candidate) (*attendance.ImportReport, error) {
	s.calls++
	s.importInput = candidates
	return s.importOut, s.importErr
}

func (s *stubTimeEntryUseCase) ListTimeEntries(_ context.Context, in attendance.ListTimeEntriesInput) (*attendance.ListTimeEntriesResult, error) {
	s.calls++
	s.listInput = in
	return s.listOut, s.listErr
}

func (s *stubTimeEntryUseCase) ListTimeEntriesByEmployee(_ context.Context, employeeID int64, in attendance.ListTimeEntriesInput) (*attendance.ListTimeEntriesResult, error) {
	s.calls++
	s.listEmployeeID = employeeID
	s.listInput = in
	return s.listOut, s.listErr
}

func (s *stubTimeEntryUseCase) ListTimeEntriesByDateRange(_ context.Context, start, end string, in attendance.ListTimeEntriesInput) (*attendance.ListTimeEntriesResult, error) {
	s.calls++
	s.listStart, s.listEnd = start, end
	s.listInput = in
	return s.listOut, s.listErr
}

func (s *stubTimeEntryUseCase) GetStatistics(_ context.Context) (*attendance.Statistics, error) {
	s.calls++
	return s.statsOut, s.statsErr
}

type stubEmployeeUseCase struct {
	getInput  employee.GetEmployeeInput
	getOut    *employee.Employee
	getErr    error
	listInput employee.ListEmployeesInput
	listOut   *employee.ListEmployeesResult
	listErr   error
}

func (s *stubEmployeeUseCase) GetEmployee(_ context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	s.getInput = in
	return s.getOut, s.getErr
}

func (s *stubEmployeeUseCase) ListEmployees(_ context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error) {
	s.listInput = in
	return s.listOut, s.listErr
}
