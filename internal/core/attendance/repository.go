package attendance

import (
	"context"
	"strings"
)

// Repository は勤怠記録永続化の抽象です。
// コンテキストにトランザクションがあれば、すべての操作はその中で実行されます。
type Repository interface {
	Create(ctx context.Context, entry *TimeEntry) (*TimeEntry, error)
	Update(ctx context.Context, entry *TimeEntry) (*TimeEntry, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*TimeEntry, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID int64, date string) (*TimeEntry, error)
	List(ctx context.Context, filter ListFilter) ([]*TimeEntry, string, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

// SortField は一覧の並び替えに使える項目です。
type SortField string

const (
	SortByID         SortField = "id"
	SortByEmployeeID SortField = "employeeId"
	SortByDate       SortField = "date"
	SortByClockIn    SortField = "clockIn"
	SortByClockOut   SortField = "clockOut"
	SortByCreatedAt  SortField = "createdAt"
)

// Sort は並び替え条件です。
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort は日付の降順です。
var DefaultSort = Sort{Field: SortByDate, Desc: true}

// ParseSort は "date:DESC" 形式の並び替え指定を解釈します。空文字は DefaultSort になります。
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}

	name, dir, _ := strings.Cut(raw, ":")
	sort := Sort{Field: SortField(strings.TrimSpace(name))}
	switch sort.Field {
	case SortByID, SortByEmployeeID, SortByDate, SortByClockIn, SortByClockOut, SortByCreatedAt:
	default:
		return Sort{}, invalidField("sortBy", raw, "unsupported sort field")
	}

	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "", "ASC":
	case "DESC":
		sort.Desc = true
	default:
		return Sort{}, invalidField("sortBy", raw, "direction must be ASC or DESC")
	}
	return sort, nil
}

// ListFilter は一覧取得用フィルタです。日付境界は YYYY-MM-DD で、空文字は無制限を表します。
type ListFilter struct {
	EmployeeID *int64
	Status     *Status
	DateFrom   string
	DateTo     string
	Sort       Sort
	Limit      int
	Offset     int
}
