package attendance

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "2025-11-06", want: "2025-11-06"},
		{raw: " 2025-11-06 ", want: "2025-11-06"},
		{raw: "06/11/2025", want: "2025-11-06"},
		{raw: "12/31/2025", want: "2025-12-31"},
		{raw: "6/11/2025", want: "2025-06-11"},
		{raw: "06-11-2025", want: "2025-11-06"},
		{raw: "2024-02-29", want: "2024-02-29"},
		{raw: "2025-02-29", wantErr: true},
		{raw: "2025-13-01", wantErr: true},
		{raw: "2025/11/06", wantErr: true},
		{raw: "Nov 6 2025", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeDate(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("NormalizeDate(%q) expected validation error, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeDate(%q) returned error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeDate_ErrorNamesFieldAndValue(t *testing.T) {
	t.Parallel()

	_, err := NormalizeDate("31.12.2025")
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "Date" || verr.Value != "31.12.2025" {
		t.Fatalf("unexpected error fields: %+v", verr)
	}
}

func TestNormalizeClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "9:05", want: "09:05:00"},
		{raw: "09:05", want: "09:05:00"},
		{raw: "09:05:30", want: "09:05:30"},
		{raw: "9:05:30", want: "09:05:30"},
		{raw: "23:59:59", want: "23:59:59"},
		{raw: "00:00", want: "00:00:00"},
		{raw: "24:00", wantErr: true},
		{raw: "12:60", wantErr: true},
		{raw: "12:30:60", wantErr: true},
		{raw: "9:5", wantErr: true},
		{raw: "0900", wantErr: true},
		{raw: "9:00 AM", wantErr: true},
		{raw: "09:00:00.999", wantErr: true},
		{raw: "09:00:00,5", wantErr: true},
		{raw: "09:00.5", wantErr: true},
		{raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeClock("Clock In", tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("NormalizeClock(%q) expected validation error, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeClock(%q) returned error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeEmployeeID(t *testing.T) {
	t.Parallel()

	if id, err := NormalizeEmployeeID(" 42 "); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	for _, raw := range []string{"0", "-3", "abc", "1.5", ""} {
		if _, err := NormalizeEmployeeID(raw); !errors.Is(err, ErrValidation) {
			t.Errorf("NormalizeEmployeeID(%q) expected validation error, got %v", raw, err)
		}
	}
}

func TestResolveColumns_AliasesAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	cols, err := ResolveColumns([]string{"employee_id", "DATE", "check in", "ClockOut"})
	if err != nil {
		t.Fatalf("ResolveColumns returned error: %v", err)
	}

	cells := []string{"7", "2025-11-06", "08:00", "16:00"}
	if got := cols.Value(FieldEmployeeID, cells); got != "7" {
		t.Errorf("employee id = %q", got)
	}
	if got := cols.Value(FieldDate, cells); got != "2025-11-06" {
		t.Errorf("date = %q", got)
	}
	if got := cols.Value(FieldClockIn, cells); got != "08:00" {
		t.Errorf("clock in = %q", got)
	}
	if got := cols.Value(FieldClockOut, cells); got != "16:00" {
		t.Errorf("clock out = %q", got)
	}
}

func TestResolveColumns_FirstNonEmptyAliasWins(t *testing.T) {
	t.Parallel()

	cols, err := ResolveColumns([]string{"ID", "Employee ID", "Date", "Clock In"})
	if err != nil {
		t.Fatalf("ResolveColumns returned error: %v", err)
	}

	if got := cols.Value(FieldEmployeeID, []string{"9", "3", "2025-11-06", "08:00"}); got != "3" {
		t.Errorf("expected preferred alias value 3, got %q", got)
	}
	if got := cols.Value(FieldEmployeeID, []string{"9", "", "2025-11-06", "08:00"}); got != "9" {
		t.Errorf("expected fallback alias value 9, got %q", got)
	}
}

func TestResolveColumns_MissingRequired(t *testing.T) {
	t.Parallel()

	_, err := ResolveColumns([]string{"Employee ID", "Clock Out"})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Reason, "Date") || !strings.Contains(verr.Reason, "Clock In") {
		t.Fatalf("expected missing columns to be named, got %q", verr.Reason)
	}
}

func TestParseRecord(t *testing.T) {
	t.Parallel()

	cols, err := ResolveColumns([]string{"Employee ID", "Date", "Clock In", "Clock Out"})
	if err != nil {
		t.Fatalf("ResolveColumns returned error: %v", err)
	}

	got, err := ParseRecord(3, cols, []string{"1", "06/11/2025", "9:00", "17:30"})
	if err != nil {
		t.Fatalf("ParseRecord returned error: %v", err)
	}
	if got.Row != 3 || got.EmployeeID != 1 || got.Date != "2025-11-06" || got.ClockIn != "09:00:00" {
		t.Fatalf("unexpected candidate: %+v", got)
	}
	if got.ClockOut == nil || *got.ClockOut != "17:30:00" {
		t.Fatalf("unexpected clock out: %v", got.ClockOut)
	}

	open, err := ParseRecord(4, cols, []string{"1", "2025-11-07", "09:00"})
	if err != nil {
		t.Fatalf("ParseRecord without clock out returned error: %v", err)
	}
	if open.ClockOut != nil {
		t.Fatalf("expected nil clock out, got %v", *open.ClockOut)
	}
}

func TestParseRecord_Errors(t *testing.T) {
	t.Parallel()

	cols, err := ResolveColumns([]string{"Employee ID", "Date", "Clock In", "Clock Out"})
	if err != nil {
		t.Fatalf("ResolveColumns returned error: %v", err)
	}

	tests := []struct {
		name  string
		cells []string
		want  string
	}{
		{name: "missing clock in", cells: []string{"1", "2025-11-06", "", "17:00"}, want: "Clock In"},
		{name: "bad employee", cells: []string{"x", "2025-11-06", "09:00", ""}, want: "Employee ID"},
		{name: "bad date", cells: []string{"1", "2025-99-06", "09:00", ""}, want: "Date"},
		{name: "clock out before clock in", cells: []string{"1", "2025-11-06", "17:00", "09:00"}, want: "must be after Clock In"},
		{name: "clock out equals clock in", cells: []string{"1", "2025-11-06", "09:00", "09:00:00"}, want: "must be after Clock In"},
	}

	for _, tt := range tests {
		_, err := ParseRecord(2, cols, tt.cells)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", tt.name, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected %q in %q", tt.name, tt.want, err.Error())
		}
	}
}

func TestParseSort(t *testing.T) {
	t.Parallel()

	if s, err := ParseSort(""); err != nil || s != DefaultSort {
		t.Fatalf("expected default sort, got %+v (%v)", s, err)
	}
	if s, err := ParseSort("clockIn:asc"); err != nil || s != (Sort{Field: SortByClockIn}) {
		t.Fatalf("unexpected sort: %+v (%v)", s, err)
	}
	if s, err := ParseSort("createdAt:DESC"); err != nil || s != (Sort{Field: SortByCreatedAt, Desc: true}) {
		t.Fatalf("unexpected sort: %+v (%v)", s, err)
	}
	for _, raw := range []string{"status:ASC", "date:SIDEWAYS"} {
		if _, err := ParseSort(raw); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseSort(%q) expected validation error, got %v", raw, err)
		}
	}
}
