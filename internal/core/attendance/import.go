package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
	"go.uber.org/zap"
)

// ImportTimeEntries は候補レコードを 1 つのトランザクションで順に登録します。
//
// 入力不備・社員不在・重複は行ごとのエラーとして報告し、処理を継続します。
// 各行はセーブポイント内で実行されるため、失敗した行の書き込みだけが取り消されます。
// それ以外のエラーはトランザクション全体をロールバックし、レポートなしでそのまま返します。
func (s *Service) ImportTimeEntries(ctx context.Context, candidates []Candidate) (*ImportReport, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidates: %w", ErrEmptyInput)
	}

	batchID := uuid.NewString()
	logger := s.logger.With(zap.String("batch_id", batchID), zap.Int("rows", len(candidates)))
	started := s.clock.Now()

	var report *ImportReport
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		r := &ImportReport{Total: len(candidates), Errors: []ImportFailure{}}
		for i := range candidates {
			c := candidates[i]
			rowErr := s.tx.WithinSavepoint(txCtx, func(rowCtx context.Context) error {
				return s.importOne(rowCtx, c)
			})
			if rowErr == nil {
				r.Imported++
				continue
			}
			if !isRowError(rowErr) {
				return rowErr
			}

			r.Failed++
			r.Errors = append(r.Errors, ImportFailure{
				Row:        c.Row,
				EmployeeID: c.EmployeeID,
				Date:       c.Date,
				Error:      describeRowError(c, rowErr),
			})
			logger.Debug("row rejected", zap.Int("row", c.Row), zap.Error(rowErr))
		}
		report = r
		return nil
	})

	elapsed := s.clock.Now().Sub(started)
	if s.observer != nil {
		s.observer.ObserveImport(report, elapsed, err)
	}
	if err != nil {
		logger.Error("bulk import aborted", zap.Error(err))
		return nil, err
	}

	logger.Info(fmt.Sprintf("Bulk import completed: %d imported, %d failed", report.Imported, report.Failed),
		zap.Int("imported", report.Imported),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", elapsed),
	)
	if report.Imported > 0 {
		s.invalidateStatistics(ctx)
	}
	return report, nil
}

func (s *Service) importOne(ctx context.Context, c Candidate) error {
	if c.EmployeeID <= 0 {
		return invalidField(FieldEmployeeID.String(), fmt.Sprint(c.EmployeeID), "must be a positive integer")
	}
	date, err := NormalizeDate(c.Date)
	if err != nil {
		return err
	}
	clockIn, err := NormalizeClock(FieldClockIn.String(), c.ClockIn)
	if err != nil {
		return err
	}
	clockOut, err := normalizeOptionalClock(FieldClockOut.String(), c.ClockOut)
	if err != nil {
		return err
	}

	if err := s.resolver.Check(ctx, c.EmployeeID, date, 0); err != nil {
		return err
	}

	now := s.clock.Now()
	entry := &TimeEntry{
		EmployeeID: c.EmployeeID,
		Date:       date,
		ClockIn:    clockIn,
		ClockOut:   clockOut,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	entry.Status = Classify(entry.ClockIn, entry.ClockOut)

	_, err = s.repo.Create(ctx, entry)
	return err
}

// isRowError は行単位で報告して処理を継続すべきエラーかどうかを判定します。
func isRowError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateEntry) ||
		errors.Is(err, employee.ErrEmployeeNotFound)
}

func describeRowError(c Candidate, err error) string {
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return fmt.Sprintf("Employee with ID %d not found", c.EmployeeID)
	case errors.Is(err, ErrDuplicateEntry):
		return "Duplicate entry for this date"
	default:
		if verr, ok := AsValidationError(err); ok {
			return verr.Error()
		}
		return err.Error()
	}
}
