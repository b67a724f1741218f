package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
// WithinSavepoint は外側のトランザクションを壊さずに一部の処理だけを取り消すために使います。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
	WithinSavepoint(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinSavepoint(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// StatisticsCache は集計結果のキャッシュです。
// 世代は Invalidate のたびに進みます。Set は generation が現在の世代と一致する場合だけ保存し、
// 集計中に書き込みが挟まった古い結果は捨てます。
type StatisticsCache interface {
	Get(ctx context.Context) (*Statistics, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, stats *Statistics, generation int64) error
	Invalidate(ctx context.Context) error
}

// ImportObserver は一括取り込みの結果を受け取ります。
type ImportObserver interface {
	ObserveImport(report *ImportReport, elapsed time.Duration, err error)
}

// UseCase は勤怠記録ユースケースの公開インターフェースです。
type UseCase interface {
	CreateTimeEntry(ctx context.Context, in CreateTimeEntryInput) (*TimeEntry, error)
	GetTimeEntry(ctx context.Context, id int64) (*TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, in UpdateTimeEntryInput) (*TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id int64) error
	BulkDeleteTimeEntries(ctx context.Context, ids []int64) (*BulkDeleteResult, error)
	ImportTimeEntries(ctx context.Context, candidates []Candidate) (*ImportReport, error)
	ListTimeEntries(ctx context.Context, in ListTimeEntriesInput) (*ListTimeEntriesResult, error)
	ListTimeEntriesByEmployee(ctx context.Context, employeeID int64, in ListTimeEntriesInput) (*ListTimeEntriesResult, error)
	ListTimeEntriesByDateRange(ctx context.Context, start, end string, in ListTimeEntriesInput) (*ListTimeEntriesResult, error)
	GetStatistics(ctx context.Context) (*Statistics, error)
}

// Service は勤怠記録に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	resolver *Resolver
	tx       TransactionManager
	clock    Clock
	logger   *zap.Logger
	cache    StatisticsCache
	observer ImportObserver
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithClock は時刻の取得元を差し替えます。
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStatisticsCache は集計キャッシュを設定します。
func WithStatisticsCache(cache StatisticsCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithImportObserver は取り込み結果の通知先を設定します。
func WithImportObserver(observer ImportObserver) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeLookup, tx TransactionManager, opts ...Option) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:     repo,
		resolver: NewResolver(repo, employees),
		tx:       tx,
		clock:    realClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTimeEntryInput は勤怠記録作成時の入力です。ステータスは受け付けません。
type CreateTimeEntryInput struct {
	EmployeeID int64
	Date       string
	ClockIn    string
	ClockOut   *string
}

// UpdateTimeEntryInput は勤怠記録更新時の入力です。nil の項目は変更しません。
// ClockOutSet が true で ClockOut が nil の場合は退勤時刻を消去します。
type UpdateTimeEntryInput struct {
	ID          int64
	EmployeeID  *int64
	Date        *string
	ClockIn     *string
	ClockOut    *string
	ClockOutSet bool
}

// CreateTimeEntry は勤怠記録を 1 件作成します。
func (s *Service) CreateTimeEntry(ctx context.Context, in CreateTimeEntryInput) (*TimeEntry, error) {
	if in.EmployeeID <= 0 {
		return nil, invalidField("employeeId", fmt.Sprint(in.EmployeeID), "must be a positive integer")
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	clockIn, err := NormalizeClock("clockIn", in.ClockIn)
	if err != nil {
		return nil, err
	}
	clockOut, err := normalizeOptionalClock("clockOut", in.ClockOut)
	if err != nil {
		return nil, err
	}

	var created *TimeEntry
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.resolver.Check(txCtx, in.EmployeeID, date, 0); err != nil {
			return err
		}

		now := s.clock.Now()
		entry := &TimeEntry{
			EmployeeID: in.EmployeeID,
			Date:       date,
			ClockIn:    clockIn,
			ClockOut:   clockOut,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		entry.Status = Classify(entry.ClockIn, entry.ClockOut)

		result, err := s.repo.Create(txCtx, entry)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidateStatistics(ctx)
	return created, nil
}

// GetTimeEntry は勤怠記録を取得します。
func (s *Service) GetTimeEntry(ctx context.Context, id int64) (*TimeEntry, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *TimeEntry
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateTimeEntry は勤怠記録を更新します。
// 社員または日付が変わる場合は存在確認と重複確認をやり直し、ステータスは常に再計算します。
func (s *Service) UpdateTimeEntry(ctx context.Context, in UpdateTimeEntryInput) (*TimeEntry, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if in.EmployeeID != nil && *in.EmployeeID <= 0 {
		return nil, invalidField("employeeId", fmt.Sprint(*in.EmployeeID), "must be a positive integer")
	}

	var date, clockIn *string
	if in.Date != nil {
		d, err := NormalizeDate(*in.Date)
		if err != nil {
			return nil, err
		}
		date = &d
	}
	if in.ClockIn != nil {
		c, err := NormalizeClock("clockIn", *in.ClockIn)
		if err != nil {
			return nil, err
		}
		clockIn = &c
	}
	clockOut, err := normalizeOptionalClock("clockOut", in.ClockOut)
	if err != nil {
		return nil, err
	}

	var updated *TimeEntry
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		employeeChanged := in.EmployeeID != nil && *in.EmployeeID != existing.EmployeeID
		dateChanged := date != nil && *date != existing.Date

		if employeeChanged {
			existing.EmployeeID = *in.EmployeeID
		}
		if dateChanged {
			existing.Date = *date
		}
		if employeeChanged || dateChanged {
			if err := s.resolver.Check(txCtx, existing.EmployeeID, existing.Date, existing.ID); err != nil {
				return err
			}
		}

		if clockIn != nil {
			existing.ClockIn = *clockIn
		}
		if in.ClockOutSet || clockOut != nil {
			existing.ClockOut = clockOut
		}

		existing.Status = Classify(existing.ClockIn, existing.ClockOut)
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidateStatistics(ctx)
	return updated, nil
}

// DeleteTimeEntry は勤怠記録を削除します。
func (s *Service) DeleteTimeEntry(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}

	s.invalidateStatistics(ctx)
	return nil
}

// BulkDeleteTimeEntries は ID ごとに独立して削除します。トランザクションでまとめないため、
// 途中で基盤エラーが発生した場合もそれまでの削除は確定します。
func (s *Service) BulkDeleteTimeEntries(ctx context.Context, ids []int64) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, invalidField("ids", "", "must contain at least one id")
	}

	result := &BulkDeleteResult{Errors: []string{}}
	defer func() {
		if result.Deleted > 0 {
			s.invalidateStatistics(ctx)
		}
	}()

	for _, id := range ids {
		var err error
		if id <= 0 {
			err = fmt.Errorf("id: %w", ErrInvalidID)
		} else {
			err = s.repo.Delete(ctx, id)
		}

		switch {
		case err == nil:
			result.Deleted++
		case errors.Is(err, ErrTimeEntryNotFound), errors.Is(err, ErrInvalidID):
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("ID %d: %s", id, err.Error()))
		default:
			return nil, err
		}
	}

	s.logger.Info("bulk delete completed",
		zap.Int("deleted", result.Deleted),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *Service) invalidateStatistics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate statistics cache", zap.Error(err))
	}
}

func normalizeOptionalClock(field string, raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	c, err := NormalizeClock(field, *raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
