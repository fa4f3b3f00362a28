// Package ledger records the outcome of every buy attempt. Records are
// append-only: no mutation or removal once written, no TTL. Clear exists for
// test isolation only.
package ledger

import "time"

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Record is one buy attempt's outcome. Price fields are copied from the
// catalog at trade time so the record stays accurate after prices move.
// CurrentPrice and Deviation are only meaningful on success; ErrorMessage and
// ErrorCode only on failure.
type Record struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name,omitempty"`
	Quantity       int       `json:"quantity"`
	RequestedPrice float64   `json:"requestedPrice"`
	CurrentPrice   float64   `json:"currentPrice,omitempty"`
	Deviation      float64   `json:"deviation,omitempty"`
	Status         Status    `json:"status"`
	ErrorMessage   string    `json:"error,omitempty"`
	ErrorCode      string    `json:"errorCode,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Filter selects a subsequence of records. Zero fields match everything.
// Date matches records whose timestamp falls on the same calendar day in the
// server's local time zone.
type Filter struct {
	UserID string
	Status Status
	Date   time.Time
}

func (f Filter) matches(r Record) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.Date.IsZero() {
		start := startOfDay(f.Date)
		end := start.Add(24 * time.Hour)
		ts := r.Timestamp.In(time.Local)
		if ts.Before(start) || !ts.Before(end) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// Ledger is an append-only transaction log. Record must be safe to call from
// many in-flight requests; Query preserves insertion order.
type Ledger interface {
	Record(Record) error
	Query(Filter) ([]Record, error)
	Clear() error
	Close() error
}
