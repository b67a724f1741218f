package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

// Field はスプレッドシート上の論理的な列です。
type Field int

const (
	FieldEmployeeID Field = iota
	FieldDate
	FieldClockIn
	FieldClockOut
)

func (f Field) String() string {
	switch f {
	case FieldEmployeeID:
		return "Employee ID"
	case FieldDate:
		return "Date"
	case FieldClockIn:
		return "Clock In"
	case FieldClockOut:
		return "Clock Out"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

func (f Field) required() bool {
	return f != FieldClockOut
}

var fields = []Field{FieldEmployeeID, FieldDate, FieldClockIn, FieldClockOut}

// columnAliases は列見出しの別名です。先頭ほど優先されます。
var columnAliases = map[Field][]string{
	FieldEmployeeID: {"Employee ID", "EmployeeID", "employee_id", "ID"},
	FieldDate:       {"Date"},
	FieldClockIn:    {"Clock In", "ClockIn", "clock_in", "Check In"},
	FieldClockOut:   {"Clock Out", "ClockOut", "clock_out", "Check Out"},
}

// dateLayouts は受け付ける日付書式です。DD/MM を MM/DD より先に試します。
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"1/2/2006",
	"02-01-2006",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// NormalizeDate は日付文字列を YYYY-MM-DD に正規化します。
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalidField(FieldDate.String(), raw, "value is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", invalidField(FieldDate.String(), raw, "expected YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY or DD-MM-YYYY")
}

// NormalizeClock は時刻文字列を HH:MM:SS に正規化します。field はエラーメッセージに使われます。
func NormalizeClock(field, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalidField(field, raw, "value is required")
	}
	if t, ok := parseClock(s); ok {
		return t.Format(clockLayout), nil
	}
	return "", invalidField(field, raw, "expected HH:MM or HH:MM:SS within 00:00:00-23:59:59")
}

// NormalizeEmployeeID は社員 ID を正の整数として解釈します。
func NormalizeEmployeeID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, invalidField(FieldEmployeeID.String(), raw, "value is required")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidField(FieldEmployeeID.String(), raw, "must be a positive integer")
	}
	return id, nil
}

// ValidDate は YYYY-MM-DD に厳密に一致する実在日付かどうかを返します。
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// parseClock は数字とコロンだけからなる値を解釈します。小数秒は受け付けません。
func parseClock(s string) (time.Time, bool) {
	if strings.IndexFunc(s, func(r rune) bool { return r != ':' && (r < '0' || r > '9') }) >= 0 {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ColumnMap は論理列ごとに、該当する見出しの列番号を別名の優先順に保持します。
type ColumnMap map[Field][]int

// ResolveColumns は見出し行から列の対応を決定します。必須列が無い場合は ValidationError を返します。
func ResolveColumns(header []string) (ColumnMap, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(ColumnMap, len(fields))
	var missing []string
	for _, f := range fields {
		for _, alias := range columnAliases[f] {
			want := strings.ToLower(alias)
			for i, h := range normalized {
				if h == want {
					cols[f] = append(cols[f], i)
				}
			}
		}
		if f.required() && len(cols[f]) == 0 {
			missing = append(missing, f.String())
		}
	}

	if len(missing) > 0 {
		return nil, &ValidationError{
			Field:  "header",
			Reason: "missing required column(s): " + strings.Join(missing, ", "),
		}
	}
	return cols, nil
}

// Value は行から論理列の値を取り出します。空でない最初の値を採用します。
func (m ColumnMap) Value(f Field, cells []string) string {
	for _, idx := range m[f] {
		if idx >= len(cells) {
			continue
		}
		if v := strings.TrimSpace(cells[idx]); v != "" {
			return v
		}
	}
	return ""
}

// ParseRecord は 1 行分のセルを Candidate に変換します。
// 退勤が出勤より後でない行はこの段階で拒否します。
func ParseRecord(row int, cols ColumnMap, cells []string) (Candidate, error) {
	for _, f := range fields {
		if f.required() && cols.Value(f, cells) == "" {
			return Candidate{}, invalidField(f.String(), "", "value is required")
		}
	}

	employeeID, err := NormalizeEmployeeID(cols.Value(FieldEmployeeID, cells))
	if err != nil {
		return Candidate{}, err
	}

	date, err := NormalizeDate(cols.Value(FieldDate, cells))
	if err != nil {
		return Candidate{}, err
	}

	clockIn, err := NormalizeClock(FieldClockIn.String(), cols.Value(FieldClockIn, cells))
	if err != nil {
		return Candidate{}, err
	}

	var clockOut *string
	if raw := cols.Value(FieldClockOut, cells); raw != "" {
		out, err := NormalizeClock(FieldClockOut.String(), raw)
		if err != nil {
			return Candidate{}, err
		}
		if out <= clockIn {
			return Candidate{}, invalidField(FieldClockOut.String(), out, fmt.Sprintf("must be after Clock In (%s)", clockIn))
		}
		clockOut = &out
	}

	return Candidate{
		Row:        row,
		EmployeeID: employeeID,
		Date:       date,
		ClockIn:    clockIn,
		ClockOut:   clockOut,
	}, nil
}
