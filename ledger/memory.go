package ledger

import (
	"context"
	"sync"

	"containerbeheer/models"
)

// MemoryStore keeps the ledger in process memory. It backs tests and local
// runs without a database; semantics match the MySQL store, including the
// all-or-nothing disposition transitions.
type MemoryStore struct {
	mu       sync.Mutex
	entries  []models.LogEntry
	totals   map[string]models.DailyTotal
	snapshot []models.ContainerRecord

	// FailAppends makes every write of a logbook entry fail, for
	// exercising rollback paths.
	FailAppends bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{totals: make(map[string]models.DailyTotal)}
}

func (s *MemoryStore) Append(ctx context.Context, entry models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(entry)
}

func (s *MemoryStore) appendLocked(entry models.LogEntry) error {
	if s.FailAppends {
		return &PersistenceError{Op: "logbook append", Err: context.DeadlineExceeded}
	}
	entry.Seq = int64(len(s.entries) + 1)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) UpsertDailyTotal(ctx context.Context, total models.DailyTotal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertTotalLocked(total)
	return nil
}

func (s *MemoryStore) upsertTotalLocked(total models.DailyTotal) {
	existing, ok := s.totals[total.Day]
	if !ok {
		existing = models.DailyTotal{Day: total.Day, Counters: map[string]int{}}
	}
	existing.HighFillCount = total.HighFillCount
	if existing.Counters == nil {
		existing.Counters = map[string]int{}
	}
	for k, v := range total.Counters {
		existing.Counters[k] = v
	}
	s.totals[total.Day] = existing
}

func (s *MemoryStore) DailyActionCounts(ctx context.Context, day string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countsLocked(day), nil
}

func (s *MemoryStore) countsLocked(day string) map[string]int {
	counts := map[string]int{}
	for _, e := range s.entries {
		if e.Timestamp.Format("2006-01-02") == day {
			counts[e.City]++
		}
	}
	return counts
}

func (s *MemoryStore) LoadSnapshot(ctx context.Context) ([]models.ContainerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]models.ContainerRecord, len(s.snapshot))
	copy(records, s.snapshot)
	return records, nil
}

func (s *MemoryStore) SaveSnapshot(ctx context.Context, records []models.ContainerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceSnapshotLocked(records)
	return nil
}

func (s *MemoryStore) replaceSnapshotLocked(records []models.ContainerRecord) {
	s.snapshot = make([]models.ContainerRecord, len(records))
	copy(s.snapshot, records)
}

// ApplyHandled mirrors the MySQL transaction: the conditional flip is
// checked before anything mutates, so a conflict or a simulated append
// failure leaves the logbook, the snapshot and the totals all untouched.
func (s *MemoryStore) ApplyHandled(ctx context.Context, entry models.LogEntry, version int64, highFillCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppends {
		return &PersistenceError{Op: "logbook append", Err: context.DeadlineExceeded}
	}
	idx := -1
	for i := range s.snapshot {
		r := &s.snapshot[i]
		if r.Name == entry.Name && !r.Handled && r.Version == version {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrConflict
	}
	if err := s.appendLocked(entry); err != nil {
		return err
	}
	s.snapshot[idx].Handled = true
	s.snapshot[idx].Version++
	s.refreshTotalLocked(entry, highFillCount)
	return nil
}

// ApplyRemoval mirrors the MySQL transaction for removals.
func (s *MemoryStore) ApplyRemoval(ctx context.Context, entry models.LogEntry, remaining []models.ContainerRecord, highFillCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendLocked(entry); err != nil {
		return err
	}
	s.replaceSnapshotLocked(remaining)
	s.refreshTotalLocked(entry, highFillCount)
	return nil
}

func (s *MemoryStore) refreshTotalLocked(entry models.LogEntry, highFillCount int) {
	day := entry.Timestamp.Format("2006-01-02")
	s.upsertTotalLocked(models.DailyTotal{
		Day:           day,
		HighFillCount: highFillCount,
		Counters:      s.countsLocked(day),
	})
}

func (s *MemoryStore) RecentEntries(ctx context.Context, limit int) ([]models.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]models.LogEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, s.entries[i])
	}
	return entries, nil
}

// Entries returns a copy of the whole logbook, oldest first.
func (s *MemoryStore) Entries() []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]models.LogEntry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Total returns the stored daily total for a day.
func (s *MemoryStore) Total(day string) (models.DailyTotal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.totals[day]
	return t, ok
}
