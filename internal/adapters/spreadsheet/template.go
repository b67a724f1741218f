package spreadsheet

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	// SheetName はテンプレートのシート名です。
	SheetName = "Attendance"
	// ContentType は xlsx の MIME タイプです。
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	templateHeader  = []any{"Employee ID", "Date", "Clock In", "Clock Out"}
	templateExample = []any{1, "2025-11-06", "09:00:00", "17:30:00"}
)

// Template は取り込み用テンプレートのブックを生成します。
func Template() ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("spreadsheet: rename sheet: %w", err)
	}
	if err := file.SetSheetRow(SheetName, "A1", &templateHeader); err != nil {
		return nil, fmt.Errorf("spreadsheet: write header: %w", err)
	}
	if err := file.SetSheetRow(SheetName, "A2", &templateExample); err != nil {
		return nil, fmt.Errorf("spreadsheet: write example: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: header style: %w", err)
	}
	if err := file.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return nil, fmt.Errorf("spreadsheet: header style: %w", err)
	}

	if err := file.SetColWidth(SheetName, "A", "B", 12); err != nil {
		return nil, fmt.Errorf("spreadsheet: column width: %w", err)
	}
	if err := file.SetColWidth(SheetName, "C", "D", 10); err != nil {
		return nil, fmt.Errorf("spreadsheet: column width: %w", err)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// TemplateFilename はダウンロード時のファイル名を返します。
func TemplateFilename(now time.Time) string {
	return fmt.Sprintf("time-entries-template-%s.xlsx", now.Format("2006-01-02"))
}
