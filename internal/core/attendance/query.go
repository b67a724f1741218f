package attendance

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultListPageSize = 20
	maxListPageSize     = 200
)

// ListTimeEntriesInput は一覧取得時の入力です。
type ListTimeEntriesInput struct {
	PageSize   int
	PageToken  string
	SortBy     string
	EmployeeID *int64
	Status     *Status
	DateFrom   string
	DateTo     string
}

// ListTimeEntriesResult は一覧取得結果を表します。
type ListTimeEntriesResult struct {
	Entries       []*TimeEntry
	NextPageToken string
	TotalCount    int64
}

// ListTimeEntries は条件に一致する勤怠記録を取得します。
func (s *Service) ListTimeEntries(ctx context.Context, in ListTimeEntriesInput) (*ListTimeEntriesResult, error) {
	filter, err := buildListFilter(in)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// ListTimeEntriesByEmployee は社員の存在を確認してから、その社員の勤怠記録を取得します。
func (s *Service) ListTimeEntriesByEmployee(ctx context.Context, employeeID int64, in ListTimeEntriesInput) (*ListTimeEntriesResult, error) {
	if employeeID <= 0 {
		return nil, invalidField("employeeId", strconv.FormatInt(employeeID, 10), "must be a positive integer")
	}
	in.EmployeeID = &employeeID

	filter, err := buildListFilter(in)
	if err != nil {
		return nil, err
	}

	if err := s.resolver.EnsureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// ListTimeEntriesByDateRange は期間内の勤怠記録を取得します。
// 境界は YYYY-MM-DD に厳密に一致する必要があり、不正な場合はストレージにアクセスしません。
func (s *Service) ListTimeEntriesByDateRange(ctx context.Context, start, end string, in ListTimeEntriesInput) (*ListTimeEntriesResult, error) {
	if !ValidDate(start) {
		return nil, invalidField("startDate", start, "expected YYYY-MM-DD")
	}
	if !ValidDate(end) {
		return nil, invalidField("endDate", end, "expected YYYY-MM-DD")
	}
	if start > end {
		return nil, invalidField("startDate", start, "must not be after endDate "+end)
	}

	in.DateFrom = start
	in.DateTo = end
	return s.ListTimeEntries(ctx, in)
}

// GetStatistics はステータス別件数を集計します。キャッシュが設定されていれば優先して使います。
func (s *Service) GetStatistics(ctx context.Context) (*Statistics, error) {
	var generation int64
	cacheable := s.cache != nil
	if cacheable {
		gen, err := s.cache.Generation(ctx)
		if err != nil {
			s.logger.Warn("failed to read statistics cache generation", zap.Error(err))
			cacheable = false
		} else {
			generation = gen
			cached, ok, err := s.cache.Get(ctx)
			if err != nil {
				s.logger.Warn("failed to read statistics cache", zap.Error(err))
			} else if ok {
				return cached, nil
			}
		}
	}

	var counts []StatusCount
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.CountByStatus(txCtx)
		if err != nil {
			return err
		}
		counts = result
		return nil
	}); err != nil {
		return nil, err
	}

	stats := buildStatistics(counts)
	if cacheable {
		if err := s.cache.Set(ctx, stats, generation); err != nil {
			s.logger.Warn("failed to store statistics cache", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *Service) list(ctx context.Context, filter ListFilter) (*ListTimeEntriesResult, error) {
	result := &ListTimeEntriesResult{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		entries, token, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		total, err := s.repo.Count(txCtx, filter)
		if err != nil {
			return err
		}
		result.Entries = entries
		result.NextPageToken = token
		result.TotalCount = total
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func buildListFilter(in ListTimeEntriesInput) (ListFilter, error) {
	sort, err := ParseSort(in.SortBy)
	if err != nil {
		return ListFilter{}, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return ListFilter{}, err
	}

	filter := ListFilter{
		Sort:   sort,
		Limit:  normalizePageSize(in.PageSize),
		Offset: offset,
	}

	if in.EmployeeID != nil {
		if *in.EmployeeID <= 0 {
			return ListFilter{}, invalidField("employeeId", strconv.FormatInt(*in.EmployeeID, 10), "must be a positive integer")
		}
		id := *in.EmployeeID
		filter.EmployeeID = &id
	}
	if in.Status != nil {
		status, err := ParseStatus(string(*in.Status))
		if err != nil {
			return ListFilter{}, err
		}
		filter.Status = &status
	}
	if in.DateFrom != "" {
		if !ValidDate(in.DateFrom) {
			return ListFilter{}, invalidField("dateFrom", in.DateFrom, "expected YYYY-MM-DD")
		}
		filter.DateFrom = in.DateFrom
	}
	if in.DateTo != "" {
		if !ValidDate(in.DateTo) {
			return ListFilter{}, invalidField("dateTo", in.DateTo, "expected YYYY-MM-DD")
		}
		filter.DateTo = in.DateTo
	}
	return filter, nil
}

func buildStatistics(counts []StatusCount) *Statistics {
	byStatus := make(map[Status]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] += c.Count
	}

	stats := &Statistics{ByStatus: make([]StatusCount, 0, len(Statuses()))}
	for _, status := range Statuses() {
		count := byStatus[status]
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: status, Count: count})
		stats.Total += count
	}
	return stats
}

func normalizePageSize(pageSize int) int {
	switch {
	case pageSize <= 0:
		return defaultListPageSize
	case pageSize > maxListPageSize:
		return maxListPageSize
	default:
		return pageSize
	}
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}
	return offset, nil
}
