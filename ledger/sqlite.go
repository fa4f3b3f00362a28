package ledger

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a ledger backed by a SQLite database. The default path is
// ":memory:", which keeps the volatile-on-restart semantics of the memory
// ledger while exposing the records to SQL tooling (the report command).
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// An in-memory database exists per connection; pin the pool to one so
	// every query sees the same data.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (l *SQLite) Record(r Record) error {
	_, err := l.db.Exec(`
		INSERT INTO transactions
		(id, user_id, symbol, name, quantity, requested_price, current_price, deviation, status, error_message, error_code, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Symbol, r.Name, r.Quantity, r.RequestedPrice,
		r.CurrentPrice, r.Deviation, string(r.Status), r.ErrorMessage, r.ErrorCode, r.Timestamp,
	)
	return err
}

func (l *SQLite) Query(f Filter) ([]Record, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.Date.IsZero() {
		start := startOfDay(f.Date)
		conds = append(conds, "timestamp >= ? AND timestamp < ?")
		args = append(args, start, start.Add(24*time.Hour))
	}

	query := `
		SELECT id, user_id, symbol, name, quantity, requested_price, current_price, deviation, status, error_message, error_code, timestamp
		FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq ASC"

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec    Record
			status string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Symbol,
			&rec.Name,
			&rec.Quantity,
			&rec.RequestedPrice,
			&rec.CurrentPrice,
			&rec.Deviation,
			&status,
			&rec.ErrorMessage,
			&rec.ErrorCode,
			&rec.Timestamp,
		); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *SQLite) Clear() error {
	_, err := l.db.Exec(`DELETE FROM transactions`)
	return err
}

func (l *SQLite) Close() error {
	return l.db.Close()
}
