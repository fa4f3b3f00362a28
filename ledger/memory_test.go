package ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rec(id, user string, status Status, ts time.Time) Record {
	return Record{
		ID:             id,
		UserID:         user,
		Symbol:         "AAPL",
		Quantity:       1,
		RequestedPrice: 100,
		Status:         status,
		Timestamp:      ts,
	}
}

func TestMemoryRecordAndQuery(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	now := time.Now()

	assert.NoError(t, m.Record(rec("1", "alice", StatusSuccess, now)))
	assert.NoError(t, m.Record(rec("2", "bob", StatusFailed, now)))
	assert.NoError(t, m.Record(rec("3", "alice", StatusFailed, now)))

	all, err := m.Query(Filter{})
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	// Insertion order preserved.
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "2", all[1].ID)
	assert.Equal(t, "3", all[2].ID)
}

func TestMemoryFilterByUser(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	now := time.Now()
	m.Record(rec("1", "alice", StatusSuccess, now))
	m.Record(rec("2", "bob", StatusSuccess, now))

	got, err := m.Query(Filter{UserID: "alice"})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].UserID)
}

func TestMemoryStatusFiltersPartition(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	now := time.Now()
	for i := 0; i < 10; i++ {
		status := StatusSuccess
		if i%3 == 0 {
			status = StatusFailed
		}
		m.Record(rec(fmt.Sprintf("%d", i), "u", status, now))
	}

	succ, err := m.Query(Filter{Status: StatusSuccess})
	assert.NoError(t, err)
	fail, err := m.Query(Filter{Status: StatusFailed})
	assert.NoError(t, err)

	// No overlap, no loss.
	assert.Equal(t, 10, len(succ)+len(fail))
	for _, r := range succ {
		assert.Equal(t, StatusSuccess, r.Status)
	}
	for _, r := range fail {
		assert.Equal(t, StatusFailed, r.Status)
	}
}

func TestMemoryFilterByDate(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	today := time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)

	m.Record(rec("1", "u", StatusSuccess, today))
	m.Record(rec("2", "u", StatusSuccess, yesterday))
	m.Record(rec("3", "u", StatusSuccess, time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)))
	m.Record(rec("4", "u", StatusSuccess, time.Date(2025, 6, 15, 23, 59, 59, 0, time.Local)))

	got, err := m.Query(Filter{Date: time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)})
	assert.NoError(t, err)
	assert.Len(t, got, 3)
	for _, r := range got {
		assert.NotEqual(t, "2", r.ID)
	}
}

func TestMemoryCombinedFilters(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	now := time.Now()
	m.Record(rec("1", "alice", StatusSuccess, now))
	m.Record(rec("2", "alice", StatusFailed, now))
	m.Record(rec("3", "bob", StatusSuccess, now))

	got, err := m.Query(Filter{UserID: "alice", Status: StatusSuccess})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestMemoryClear(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	m.Record(rec("1", "u", StatusSuccess, time.Now()))

	assert.NoError(t, m.Clear())

	got, err := m.Query(Filter{})
	assert.NoError(t, err)
	assert.Empty(t, got)

	// Clear is idempotent.
	assert.NoError(t, m.Clear())
}

func TestMemoryConcurrentAppends(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	now := time.Now()

	var wg sync.WaitGroup
	const n = 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Record(rec(fmt.Sprintf("%d", i), "u", StatusSuccess, now))
		}(i)
	}
	wg.Wait()

	got, err := m.Query(Filter{})
	assert.NoError(t, err)
	assert.Len(t, got, n)
}
