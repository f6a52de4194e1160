package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    id                   TEXT NOT NULL,
    account              TEXT NOT NULL,
    date                 TEXT NOT NULL,
    description          TEXT NOT NULL,
    amount               REAL NOT NULL,
    PRIMARY KEY (file_path, id)
);

CREATE TABLE IF NOT EXISTS reviewed (
    merchant_key         TEXT PRIMARY KEY,
    reviewed_at          TEXT NOT NULL,
    note                 TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`
