package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-attendance/internal/platform/db/postgres"
)

const timeEntryReturning = `id, employee_id, to_char(date, 'YYYY-MM-DD'), to_char(clock_in, 'HH24:MI:SS'), to_char(clock_out, 'HH24:MI:SS'), status, created_at, updated_at`

var timeEntryColumns = []string{
	"id",
	"employee_id",
	"to_char(date, 'YYYY-MM-DD')",
	"to_char(clock_in, 'HH24:MI:SS')",
	"to_char(clock_out, 'HH24:MI:SS')",
	"status",
	"created_at",
	"updated_at",
}

var sortColumns = map[attendance.SortField]string{
	attendance.SortByID:         "id",
	attendance.SortByEmployeeID: "employee_id",
	attendance.SortByDate:       "date",
	attendance.SortByClockIn:    "clock_in",
	attendance.SortByClockOut:   "clock_out",
	attendance.SortByCreatedAt:  "created_at",
}

// TimeEntryRepository は PostgreSQL を利用した勤怠記録永続化の実装です。
type TimeEntryRepository struct {
	pool pgdb.Queryer
	psql sq.StatementBuilderType
}

// NewTimeEntryRepository は TimeEntryRepository を生成します。
func NewTimeEntryRepository(pool pgdb.Queryer) *TimeEntryRepository {
	return &TimeEntryRepository{pool: pool, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Create は勤怠記録を新規作成します。(employee_id, date) の一意制約違反は ErrDuplicateEntry になります。
func (r *TimeEntryRepository) Create(ctx context.Context, e *attendance.TimeEntry) (*attendance.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO time_entries (employee_id, date, clock_in, clock_out, status, created_at, updated_at)
        VALUES ($1, $2::date, $3::time, $4::time, $5, $6, $7)
        RETURNING `+timeEntryReturning,
		e.EmployeeID,
		e.Date,
		e.ClockIn,
		nullableString(e.ClockOut),
		string(e.Status),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return created, nil
}

// Update は勤怠記録を更新します。
func (r *TimeEntryRepository) Update(ctx context.Context, e *attendance.TimeEntry) (*attendance.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE time_entries
           SET employee_id = $1,
               date = $2::date,
               clock_in = $3::time,
               clock_out = $4::time,
               status = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING `+timeEntryReturning,
		e.EmployeeID,
		e.Date,
		e.ClockIn,
		nullableString(e.ClockOut),
		string(e.Status),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return updated, nil
}

// Delete は勤怠記録を削除します。
func (r *TimeEntryRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return translateTimeEntryPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrTimeEntryNotFound
	}
	return nil
}

// FindByID は ID で勤怠記録を取得します。
func (r *TimeEntryRepository) FindByID(ctx context.Context, id int64) (*attendance.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+timeEntryReturning+` FROM time_entries WHERE id = $1`, id)

	found, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return found, nil
}

// FindByEmployeeAndDate は社員と日付で勤怠記録を取得します。
func (r *TimeEntryRepository) FindByEmployeeAndDate(ctx context.Context, employeeID int64, date string) (*attendance.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+timeEntryReturning+` FROM time_entries WHERE employee_id = $1 AND date = $2::date`, employeeID, date)

	found, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return found, nil
}

// List は条件に一致する勤怠記録を取得します。
func (r *TimeEntryRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.TimeEntry, string, error) {
	if filter.Limit <= 0 {
		return nil, "", errors.New("postgres: list limit must be positive")
	}
	if filter.Offset < 0 {
		return nil, "", attendance.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1
	query := applyTimeEntryFilter(r.psql.Select(timeEntryColumns...).From("time_entries"), filter).
		OrderBy(orderByClause(filter.Sort)...).
		Limit(uint64(limitWithBuffer)).
		Offset(uint64(filter.Offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, "", err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, "", translateTimeEntryPgError(err)
	}
	defer rows.Close()

	entries := make([]*attendance.TimeEntry, 0, filter.Limit)
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, "", translateTimeEntryPgError(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateTimeEntryPgError(err)
	}

	var nextToken string
	if len(entries) == limitWithBuffer {
		entries = entries[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}
	return entries, nextToken, nil
}

// Count は条件に一致する勤怠記録の件数を返します。並び順とページングは無視します。
func (r *TimeEntryRepository) Count(ctx context.Context, filter attendance.ListFilter) (int64, error) {
	sqlStr, args, err := applyTimeEntryFilter(r.psql.Select("COUNT(*)").From("time_entries"), filter).ToSql()
	if err != nil {
		return 0, err
	}

	var total int64
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if err := exec.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, translateTimeEntryPgError(err)
	}
	return total, nil
}

// CountByStatus はステータスごとの件数を 1 回の集計クエリで取得します。
func (r *TimeEntryRepository) CountByStatus(ctx context.Context) ([]attendance.StatusCount, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT status, COUNT(*) FROM time_entries GROUP BY status`)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	defer rows.Close()

	var counts []attendance.StatusCount
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts = append(counts, attendance.StatusCount{Status: attendance.Status(status), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return counts, nil
}

func applyTimeEntryFilter(query sq.SelectBuilder, filter attendance.ListFilter) sq.SelectBuilder {
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?::date", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?::date", filter.DateTo)
	}
	return query
}

func orderByClause(sort attendance.Sort) []string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		sort = attendance.DefaultSort
		column = sortColumns[sort.Field]
	}

	dir := " ASC"
	if sort.Desc {
		dir = " DESC"
	}
	if column == "id" {
		return []string{"id" + dir}
	}
	return []string{column + dir, "id" + dir}
}

func scanTimeEntry(row pgx.Row) (*attendance.TimeEntry, error) {
	var (
		e        attendance.TimeEntry
		clockOut sql.NullString
		status   string
	)

	if err := row.Scan(
		&e.ID,
		&e.EmployeeID,
		&e.Date,
		&e.ClockIn,
		&clockOut,
		&status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrTimeEntryNotFound
		}
		return nil, err
	}

	e.Status = attendance.Status(status)
	if clockOut.Valid {
		out := clockOut.String
		e.ClockOut = &out
	}
	return &e, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func translateTimeEntryPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return errors.Join(attendance.ErrDuplicateEntry, err)
	case foreignKeyViolationCode:
		return errors.Join(employee.ErrEmployeeNotFound, err)
	case checkViolationCode, invalidDatetimeFormatCode, datetimeOverflowCode:
		return &attendance.ValidationError{Field: pgErr.ColumnName, Reason: pgErr.Message}
	default:
		return err
	}
}
