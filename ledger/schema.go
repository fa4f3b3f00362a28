package ledger

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL,
	requested_price REAL NOT NULL,
	current_price REAL NOT NULL DEFAULT 0,
	deviation REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	error_code TEXT NOT NULL DEFAULT '',
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(timestamp);
`
