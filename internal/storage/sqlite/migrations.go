package sqlite

// schema contains the database schema DDL.
const schema = `
-- Export jobs
CREATE TABLE IF NOT EXISTS export_jobs (
    id TEXT PRIMARY KEY,
    source_path TEXT NOT NULL,
    artifact TEXT NOT NULL,
    container TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    frames INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_export_jobs_created ON export_jobs(created_at);

-- Preview cache
CREATE TABLE IF NOT EXISTS preview_cache (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    png_data BLOB NOT NULL,
    generated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
