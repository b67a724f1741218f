package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Status は勤怠記録の完了状態です。打刻から導出され、入力としては受け付けません。
type Status string

const (
	StatusIncomplete Status = "INCOMPLETE"
	StatusComplete   Status = "COMPLETE"
	StatusInvalid    Status = "INVALID"
)

// Statuses は集計で報告する全ステータスを定義順に返します。
func Statuses() []Status {
	return []Status{StatusIncomplete, StatusComplete, StatusInvalid}
}

// ParseStatus は大文字小文字を区別せずにステータスを解釈します。
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusIncomplete, StatusComplete, StatusInvalid:
		return s, nil
	default:
		return "", invalidField("status", raw, fmt.Sprintf("must be one of %s, %s, %s", StatusIncomplete, StatusComplete, StatusInvalid))
	}
}

// TimeEntry は社員 1 名の 1 日分の勤怠記録です。
type TimeEntry struct {
	ID         int64
	EmployeeID int64
	Date       string
	ClockIn    string
	ClockOut   *string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Candidate はスプレッドシートから正規化された未登録の勤怠記録です。
type Candidate struct {
	Row        int
	EmployeeID int64
	Date       string
	ClockIn    string
	ClockOut   *string
}

// ImportReport は一括取り込みの結果です。Imported + Failed は常に Total と一致します。
type ImportReport struct {
	Total    int
	Imported int
	Failed   int
	Errors   []ImportFailure
}

// ImportFailure は取り込めなかった 1 行分の情報です。
type ImportFailure struct {
	Row        int
	EmployeeID int64
	Date       string
	Error      string
}

// BulkDeleteResult は一括削除の結果です。
type BulkDeleteResult struct {
	Deleted int
	Failed  int
	Errors  []string
}

// StatusCount はステータスごとの件数です。
type StatusCount struct {
	Status Status
	Count  int64
}

// Statistics は勤怠記録の集計結果です。
type Statistics struct {
	Total    int64
	ByStatus []StatusCount
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
