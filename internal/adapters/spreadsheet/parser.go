// Package spreadsheet は勤怠記録の Excel ブック読み込みとテンプレート生成を提供します。
package spreadsheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/xuri/excelize/v2"
)

// Parse はブックの先頭シートを読み込み、データ行を Candidate に変換します。
// 1 行でも不正な行があれば、全行のメッセージをまとめた ValidationError を返します。
func Parse(data []byte) ([]attendance.Candidate, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("spreadsheet: %w", attendance.ErrEmptyInput)
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &attendance.ValidationError{Field: "file", Reason: "unreadable workbook: " + err.Error()}
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("spreadsheet: no worksheet: %w", attendance.ErrEmptyInput)
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &attendance.ValidationError{Field: "file", Reason: "unreadable worksheet: " + err.Error()}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet: worksheet is empty: %w", attendance.ErrEmptyInput)
	}

	cols, err := attendance.ResolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var (
		candidates []attendance.Candidate
		messages   []string
		dataRows   int
	)
	for i, cells := range rows[1:] {
		rowNumber := i + 2
		if blank(cells) {
			continue
		}
		dataRows++

		numeric := func(col int) bool { return numericCell(file, sheetName, col, rowNumber) }
		candidate, err := attendance.ParseRecord(rowNumber, cols, convertSerials(cols, cells, numeric))
		if err != nil {
			messages = append(messages, fmt.Sprintf("Row %d: %s", rowNumber, err.Error()))
			continue
		}
		candidates = append(candidates, candidate)
	}

	if dataRows == 0 {
		return nil, fmt.Errorf("spreadsheet: no data rows: %w", attendance.ErrEmptyInput)
	}
	if len(messages) > 0 {
		return nil, &attendance.ValidationError{Reason: "spreadsheet contains invalid data", Messages: messages}
	}
	return candidates, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// maxDateSerial は 9999-12-31 のシリアル値です。
const maxDateSerial = 2958465

// numericCell はセルが数値として保存されているかを返します。文字列として入力された数字はシリアル値として扱いません。
func numericCell(file *excelize.File, sheet string, col, row int) bool {
	ref, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return false
	}
	typ, err := file.GetCellType(sheet, ref)
	if err != nil {
		return false
	}
	return typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset
}

// convertSerials は数値セルに保存された日付や時刻のシリアル値を文字列表現に直します。
func convertSerials(cols attendance.ColumnMap, cells []string, numeric func(col int) bool) []string {
	out := make([]string, len(cells))
	copy(out, cells)

	for _, idx := range cols[attendance.FieldDate] {
		if idx < len(out) && numeric(idx) {
			out[idx] = serialDate(out[idx])
		}
	}
	for _, f := range []attendance.Field{attendance.FieldClockIn, attendance.FieldClockOut} {
		for _, idx := range cols[f] {
			if idx < len(out) && numeric(idx) {
				out[idx] = serialClock(out[idx])
			}
		}
	}
	return out
}

func serialDate(raw string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 1 || v > maxDateSerial {
		return raw
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func serialClock(raw string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || v >= 1 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return raw
	}
	return t.Format("15:04:05")
}
