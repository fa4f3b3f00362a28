package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	l, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestSQLiteRecordRoundTrip(t *testing.T) {
	t.Parallel()

	l := newTestSQLite(t)

	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	in := Record{
		ID:             "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		UserID:         "alice",
		Symbol:         "AAPL",
		Name:           "Apple Inc",
		Quantity:       3,
		RequestedPrice: 150.25,
		CurrentPrice:   151.00,
		Deviation:      0.4966887417218543,
		Status:         StatusSuccess,
		Timestamp:      ts,
	}
	assert.NoError(t, l.Record(in))

	got, err := l.Query(Filter{})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, in.ID, got[0].ID)
	assert.Equal(t, in.UserID, got[0].UserID)
	assert.Equal(t, in.Name, got[0].Name)
	assert.Equal(t, in.Quantity, got[0].Quantity)
	assert.Equal(t, in.RequestedPrice, got[0].RequestedPrice)
	assert.Equal(t, in.CurrentPrice, got[0].CurrentPrice)
	assert.Equal(t, in.Deviation, got[0].Deviation)
	assert.Equal(t, StatusSuccess, got[0].Status)
	assert.True(t, got[0].Timestamp.Equal(ts))
}

func TestSQLiteFailureRecord(t *testing.T) {
	t.Parallel()

	l := newTestSQLite(t)

	in := Record{
		ID:             "X1",
		UserID:         "bob",
		Symbol:         "NOPE",
		Quantity:       1,
		RequestedPrice: 10,
		Status:         StatusFailed,
		ErrorMessage:   "stock not found",
		ErrorCode:      "NOT_FOUND",
		Timestamp:      time.Now(),
	}
	assert.NoError(t, l.Record(in))

	got, err := l.Query(Filter{Status: StatusFailed})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "stock not found", got[0].ErrorMessage)
	assert.Equal(t, "NOT_FOUND", got[0].ErrorCode)
}

func TestSQLiteQueryFilters(t *testing.T) {
	t.Parallel()

	l := newTestSQLite(t)
	now := time.Now()

	assert.NoError(t, l.Record(rec("1", "alice", StatusSuccess, now)))
	assert.NoError(t, l.Record(rec("2", "bob", StatusFailed, now)))
	assert.NoError(t, l.Record(rec("3", "alice", StatusFailed, now.AddDate(0, 0, -2))))

	byUser, err := l.Query(Filter{UserID: "alice"})
	assert.NoError(t, err)
	assert.Len(t, byUser, 2)

	byBoth, err := l.Query(Filter{UserID: "alice", Status: StatusFailed})
	assert.NoError(t, err)
	assert.Len(t, byBoth, 1)
	assert.Equal(t, "3", byBoth[0].ID)

	byDate, err := l.Query(Filter{Date: now})
	assert.NoError(t, err)
	assert.Len(t, byDate, 2)
}

func TestSQLiteInsertionOrder(t *testing.T) {
	t.Parallel()

	l := newTestSQLite(t)
	now := time.Now()

	// IDs deliberately not sorted; order must come from insertion.
	for _, id := range []string{"z", "a", "m"} {
		assert.NoError(t, l.Record(rec(id, "u", StatusSuccess, now)))
	}

	got, err := l.Query(Filter{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestSQLiteInMemoryDefault(t *testing.T) {
	t.Parallel()

	l, err := NewSQLite("")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	assert.NoError(t, l.Record(rec("1", "u", StatusSuccess, time.Now())))

	got, err := l.Query(Filter{})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteClear(t *testing.T) {
	t.Parallel()

	l := newTestSQLite(t)
	assert.NoError(t, l.Record(rec("1", "u", StatusSuccess, time.Now())))
	assert.NoError(t, l.Clear())

	got, err := l.Query(Filter{})
	assert.NoError(t, err)
	assert.Empty(t, got)
}
