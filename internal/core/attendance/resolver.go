package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/hr-attendance/internal/core/employee"
)

// EmployeeLookup は社員の存在確認を提供する外部協調者です。
type EmployeeLookup interface {
	GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error)
}

// Resolver は社員の存在と 1 日 1 件の制約を確認します。
// 確認は呼び出し時点のものであり、書き込みとの原子性は呼び出し側のトランザクションで担保します。
type Resolver struct {
	repo      Repository
	employees EmployeeLookup
}

// NewResolver は Resolver を生成します。
func NewResolver(repo Repository, employees EmployeeLookup) *Resolver {
	return &Resolver{repo: repo, employees: employees}
}

// EnsureEmployee は社員が存在することを確認します。
func (r *Resolver) EnsureEmployee(ctx context.Context, employeeID int64) error {
	if _, err := r.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: employeeID}); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return fmt.Errorf("%w: id=%d", employee.ErrEmployeeNotFound, employeeID)
		}
		return err
	}
	return nil
}

// EnsureUnique は同じ社員・日付の記録が excludeID 以外に存在しないことを確認します。
func (r *Resolver) EnsureUnique(ctx context.Context, employeeID int64, date string, excludeID int64) error {
	existing, err := r.repo.FindByEmployeeAndDate(ctx, employeeID, date)
	switch {
	case errors.Is(err, ErrTimeEntryNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == excludeID:
		return nil
	default:
		return fmt.Errorf("%w for employee %d on %s", ErrDuplicateEntry, employeeID, date)
	}
}

// Check は EnsureEmployee と EnsureUnique を順に実行します。
func (r *Resolver) Check(ctx context.Context, employeeID int64, date string, excludeID int64) error {
	if err := r.EnsureEmployee(ctx, employeeID); err != nil {
		return err
	}
	return r.EnsureUnique(ctx, employeeID, date, excludeID)
}
