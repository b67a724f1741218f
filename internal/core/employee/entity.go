package employee

import "time"

// Status は社員の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee は勤怠記録が参照する社員マスタです。
type Employee struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Status    Status
	HiredAt   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName は表示用の氏名を返します。
func (e *Employee) FullName() string {
	switch {
	case e.LastName == "":
		return e.FirstName
	case e.FirstName == "":
		return e.LastName
	default:
		return e.FirstName + " " + e.LastName
	}
}
