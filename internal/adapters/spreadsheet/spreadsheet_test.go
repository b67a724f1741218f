package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := row
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestTemplate_RoundTrip(t *testing.T) {
	t.Parallel()

	data, err := Template()
	require.NoError(t, err)

	candidates, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	got := candidates[0]
	assert.Equal(t, 2, got.Row)
	assert.Equal(t, int64(1), got.EmployeeID)
	assert.Equal(t, "2025-11-06", got.Date)
	assert.Equal(t, "09:00:00", got.ClockIn)
	require.NotNil(t, got.ClockOut)
	assert.Equal(t, "17:30:00", *got.ClockOut)
}

func TestTemplate_Layout(t *testing.T) {
	t.Parallel()

	data, err := Template()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, SheetName, f.GetSheetName(0))

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Employee ID", "Date", "Clock In", "Clock Out"}, rows[0])

	for col, want := range map[string]float64{"A": 12, "B": 12, "C": 10, "D": 10} {
		width, err := f.GetColWidth(SheetName, col)
		require.NoError(t, err)
		assert.Equal(t, want, width, "column %s", col)
	}
}

func TestParse_AliasesAndBlankRows(t *testing.T) {
	t.Parallel()

	data := workbook(t,
		[]any{"employee_id", "DATE", "Check In", "Check Out"},
		[]any{"7", "06/11/2025", "9:00", "18:00"},
		[]any{},
		[]any{"8", "2025-11-07", "08:30", ""},
	)

	candidates, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, attendance.Candidate{Row: 2, EmployeeID: 7, Date: "2025-11-06", ClockIn: "09:00:00", ClockOut: strPtr("18:00:00")}, candidates[0])
	assert.Equal(t, 4, candidates[1].Row)
	assert.Equal(t, "08:30:00", candidates[1].ClockIn)
	assert.Nil(t, candidates[1].ClockOut)
}

func TestParse_SerialDateAndTimeCells(t *testing.T) {
	t.Parallel()

	data := workbook(t,
		[]any{"Employee ID", "Date", "Clock In", "Clock Out"},
		[]any{3, 45967, 0.375, 0.75},
	)

	candidates, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "2025-11-06", candidates[0].Date)
	assert.Equal(t, "09:00:00", candidates[0].ClockIn)
	require.NotNil(t, candidates[0].ClockOut)
	assert.Equal(t, "18:00:00", *candidates[0].ClockOut)
}

func TestParse_SerialsOnlyFromNumericCells(t *testing.T) {
	t.Parallel()

	data := workbook(t,
		[]any{"Employee ID", "Date", "Clock In", "Clock Out"},
		[]any{1, "45967", "09:00", ""},
		[]any{2, 20251106, "09:00", ""},
		[]any{3, "2025-11-06", "0.375", ""},
	)

	candidates, err := Parse(data)
	require.Error(t, err)
	assert.Nil(t, candidates)

	verr, ok := attendance.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, verr.Messages, 3)
	assert.Contains(t, verr.Messages[0], `Row 2: invalid Date "45967"`)
	assert.Contains(t, verr.Messages[1], `Row 3: invalid Date "20251106"`)
	assert.Contains(t, verr.Messages[2], `Row 4: invalid Clock In "0.375"`)
}

func TestParse_CollectsEveryRowError(t *testing.T) {
	t.Parallel()

	data := workbook(t,
		[]any{"Employee ID", "Date", "Clock In", "Clock Out"},
		[]any{"abc", "2025-11-06", "09:00", ""},
		[]any{"2", "2025-02-30", "09:00", ""},
		[]any{"3", "2025-11-06", "18:00", "09:00"},
		[]any{"4", "2025-11-06", "09:00", "17:00"},
	)

	candidates, err := Parse(data)
	require.Error(t, err)
	assert.Nil(t, candidates)
	assert.ErrorIs(t, err, attendance.ErrValidation)

	var verr *attendance.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Messages, 3)
	for i, msg := range verr.Messages {
		assert.True(t, strings.HasPrefix(msg, fmt.Sprintf("Row %d: ", i+2)), msg)
	}
	assert.Contains(t, verr.Messages[2], "must be after Clock In")
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	data := workbook(t,
		[]any{"Employee ID", "Date"},
		[]any{"1", "2025-11-06"},
	)

	_, err := Parse(data)
	var verr *attendance.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "header", verr.Field)
	assert.Contains(t, verr.Reason, "Clock In")
}

func TestParse_EmptyInputs(t *testing.T) {
	t.Parallel()

	_, err := Parse(nil)
	assert.ErrorIs(t, err, attendance.ErrEmptyInput)

	_, err = Parse(workbook(t))
	assert.ErrorIs(t, err, attendance.ErrEmptyInput)

	_, err = Parse(workbook(t, []any{"Employee ID", "Date", "Clock In"}))
	assert.ErrorIs(t, err, attendance.ErrEmptyInput)
}

func TestParse_UnreadableBytes(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("definitely not a zip archive"))
	assert.ErrorIs(t, err, attendance.ErrValidation)
}

func TestTemplateFilename(t *testing.T) {
	t.Parallel()

	got := TemplateFilename(time.Date(2025, 11, 6, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "time-entries-template-2025-11-06.xlsx", got)
}

func strPtr(s string) *string { return &s }
