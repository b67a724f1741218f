package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-attendance/internal/platform/db/postgres"
)

var employeeColumns = []string{"id", "first_name", "last_name", "email", "status", "hired_at", "created_at", "updated_at"}

// EmployeeRepository は PostgreSQL を利用した社員参照の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
	psql sq.StatementBuilderType
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, first_name, last_name, email, status, hired_at, created_at, updated_at
          FROM employees
         WHERE id = $1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List は社員の一覧を ID 順に取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	query := r.psql.Select(employeeColumns...).From("employees")
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	query = query.OrderBy("id ASC").Limit(uint64(limitWithBuffer)).Offset(uint64(filter.Offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, "", err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}
	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e       employee.Employee
		status  string
		hiredAt sql.NullTime
	)

	if err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&status,
		&hiredAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.Status = employee.Status(status)
	if hiredAt.Valid {
		t := hiredAt.Time.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		e.HiredAt = &date
	}
	return &e, nil
}
