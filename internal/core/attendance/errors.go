package attendance

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("attendance: validation failed")
	ErrEmptyInput        = errors.New("attendance: no data rows")
	ErrInvalidID         = errors.New("attendance: invalid id")
	ErrInvalidPageToken  = errors.New("attendance: invalid page token")
	ErrTimeEntryNotFound = errors.New("attendance: time entry not found")
	ErrDuplicateEntry    = errors.New("attendance: time entry already exists")
)

// ValidationError は入力値の不備を表します。errors.Is(err, ErrValidation) で判定できます。
// Messages にはスプレッドシートの行単位のエラーが入ります。
type ValidationError struct {
	Field    string
	Value    string
	Reason   string
	Messages []string
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Messages) > 0:
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Messages, "; "))
	case e.Field == "":
		return e.Reason
	case e.Value == "":
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
}

// Is は ErrValidation との比較を可能にします。
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// AsValidationError は err から ValidationError を取り出します。
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
