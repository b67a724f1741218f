package attendance

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ogurasousui/hr-attendance/internal/core/employee"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployees struct {
	known map[int64]bool
	err   error
	calls int
}

func newFakeEmployees(ids ...int64) *fakeEmployees {
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &fakeEmployees{known: known}
}

func (f *fakeEmployees) GetEmployee(_ context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[in.ID] {
		return nil, employee.ErrEmployeeNotFound
	}
	return &employee.Employee{ID: in.ID, Status: employee.StatusActive}, nil
}

type fakeRepo struct {
	mu       sync.Mutex
	entries  map[int64]*TimeEntry
	seq      int64
	calls    int
	createFn func(*TimeEntry) error
	deleteFn func(int64) error
}

func newFakeRepo(entries ...*TimeEntry) *fakeRepo {
	r := &fakeRepo{entries: make(map[int64]*TimeEntry)}
	for _, e := range entries {
		clone := cloneEntry(e)
		if clone.ID == 0 {
			r.seq++
			clone.ID = r.seq
		} else if clone.ID > r.seq {
			r.seq = clone.ID
		}
		r.entries[clone.ID] = clone
	}
	return r
}

func cloneEntry(e *TimeEntry) *TimeEntry {
	clone := *e
	clone.ClockOut = cloneString(e.ClockOut)
	return &clone
}

func (r *fakeRepo) snapshot() (map[int64]*TimeEntry, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[int64]*TimeEntry, len(r.entries))
	for id, e := range r.entries {
		snap[id] = cloneEntry(e)
	}
	return snap, r.seq
}

func (r *fakeRepo) restore(entries map[int64]*TimeEntry, seq int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = entries
	r.seq = seq
}

func (r *fakeRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *fakeRepo) Create(_ context.Context, e *TimeEntry) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.createFn != nil {
		if err := r.createFn(e); err != nil {
			return nil, err
		}
	}
	for _, existing := range r.entries {
		if existing.EmployeeID == e.EmployeeID && existing.Date == e.Date {
			return nil, ErrDuplicateEntry
		}
	}
	clone := cloneEntry(e)
	r.seq++
	clone.ID = r.seq
	r.entries[clone.ID] = clone
	return cloneEntry(clone), nil
}

func (r *fakeRepo) Update(_ context.Context, e *TimeEntry) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.entries[e.ID]; !ok {
		return nil, ErrTimeEntryNotFound
	}
	r.entries[e.ID] = cloneEntry(e)
	return cloneEntry(e), nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.deleteFn != nil {
		if err := r.deleteFn(id); err != nil {
			return err
		}
	}
	if _, ok := r.entries[id]; !ok {
		return ErrTimeEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrTimeEntryNotFound
	}
	return cloneEntry(e), nil
}

func (r *fakeRepo) FindByEmployeeAndDate(_ context.Context, employeeID int64, date string) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, e := range r.entries {
		if e.EmployeeID == employeeID && e.Date == date {
			return cloneEntry(e), nil
		}
	}
	return nil, ErrTimeEntryNotFound
}

func (r *fakeRepo) filtered(filter ListFilter) []*TimeEntry {
	var out []*TimeEntry
	for _, e := range r.entries {
		if filter.EmployeeID != nil && e.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.DateFrom != "" && e.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && e.Date > filter.DateTo {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if filter.Sort.Field == SortByDate && a.Date != b.Date {
			if filter.Sort.Desc {
				return a.Date > b.Date
			}
			return a.Date < b.Date
		}
		if filter.Sort.Field == SortByID && filter.Sort.Desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
	return out
}

func (r *fakeRepo) List(_ context.Context, filter ListFilter) ([]*TimeEntry, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	all := r.filtered(filter)
	if filter.Offset > len(all) {
		return []*TimeEntry{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[filter.Offset:end], next, nil
}

func (r *fakeRepo) Count(_ context.Context, filter ListFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return int64(len(r.filtered(filter))), nil
}

func (r *fakeRepo) CountByStatus(_ context.Context) ([]StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	counts := map[Status]int64{}
	for _, e := range r.entries {
		counts[e.Status]++
	}
	var out []StatusCount
	for status, count := range counts {
		out = append(out, StatusCount{Status: status, Count: count})
	}
	return out, nil
}

// fakeTx は fakeRepo のスナップショットでコミットとロールバックを再現します。
type fakeTx struct {
	repo               *fakeRepo
	commits            int
	rollbacks          int
	savepointRollbacks int
}

func (f *fakeTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	entries, seq := f.repo.snapshot()
	if err := fn(ctx); err != nil {
		f.repo.restore(entries, seq)
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

func (f *fakeTx) WithinSavepoint(ctx context.Context, fn func(context.Context) error) error {
	entries, seq := f.repo.snapshot()
	if err := fn(ctx); err != nil {
		f.repo.restore(entries, seq)
		f.savepointRollbacks++
		return err
	}
	return nil
}

type fakeCache struct {
	stats       *Statistics
	generation  int64
	gets        int
	sets        int
	invalidated int
	// afterGeneration は世代の読み取り直後に呼ばれ、集計中の書き込みを再現します。
	afterGeneration func(c *fakeCache)
}

func (c *fakeCache) Get(context.Context) (*Statistics, bool, error) {
	c.gets++
	if c.stats == nil {
		return nil, false, nil
	}
	return c.stats, true, nil
}

func (c *fakeCache) Generation(context.Context) (int64, error) {
	gen := c.generation
	if c.afterGeneration != nil {
		c.afterGeneration(c)
	}
	return gen, nil
}

func (c *fakeCache) Set(_ context.Context, stats *Statistics, generation int64) error {
	c.sets++
	if generation != c.generation {
		return nil
	}
	c.stats = stats
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidated++
	c.generation++
	c.stats = nil
	return nil
}

type recordingObserver struct {
	reports []*ImportReport
	errs    []error
}

func (o *recordingObserver) ObserveImport(report *ImportReport, _ time.Duration, err error) {
	o.reports = append(o.reports, report)
	o.errs = append(o.errs, err)
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}
