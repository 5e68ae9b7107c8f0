package infrastructure

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracking_session (
    id              TEXT PRIMARY KEY,
    device_id       TEXT NOT NULL,
    report_interval INTEGER NOT NULL,
    endpoint_url    TEXT NOT NULL,
    http_headers    TEXT,
    transport       TEXT NOT NULL DEFAULT 'http',
    started_at      TIMESTAMP NOT NULL,
    resumed_at      TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fix_deliveries (
    id            TEXT PRIMARY KEY,
    session_id    TEXT NOT NULL,
    fix           TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'pending',
    retry_count   INTEGER NOT NULL DEFAULT 0,
    max_retries   INTEGER NOT NULL DEFAULT 5,
    error_details TEXT,
    created_at    TIMESTAMP NOT NULL,
    delivered_at  TIMESTAMP,
    next_retry_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_fix_deliveries_status_created
    ON fix_deliveries (status, created_at);

CREATE INDEX IF NOT EXISTS idx_fix_deliveries_next_retry
    ON fix_deliveries (next_retry_at) WHERE next_retry_at IS NOT NULL;
`

type (
	// Storage wraps the embedded SQLite database that holds the tracking
	// session and the fix delivery queue.
	Storage struct {
		cfg  config.StorageConfig
		db   *sqlx.DB
		once sync.Once
		err  error
	}
)

func NewStorage(cfg config.StorageConfig) (*Storage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	return &Storage{cfg: cfg}, nil
}

// GetDB opens the database on first use, applies pragmas and ensures the
// schema exists.
func (s *Storage) GetDB() (*sqlx.DB, error) {
	s.once.Do(func() {
		dsn := fmt.Sprintf("file:%s?%s", s.cfg.Path, s.dsnOptions())

		db, err := sqlx.Open("sqlite", dsn)
		if err != nil {
			s.err = fmt.Errorf("failed to open sqlite database: %w", err)

			return
		}

		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY on concurrent writers.
		db.SetMaxOpenConns(s.cfg.MaxOpenConns)

		if err := db.Ping(); err != nil {
			s.err = fmt.Errorf("failed to ping sqlite database: %w", err)

			return
		}

		if _, err := db.Exec(schema); err != nil {
			s.err = fmt.Errorf("failed to ensure schema: %w", err)

			return
		}

		s.db = db
	})

	return s.db, s.err
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) dsnOptions() string {
	opts := url.Values{}
	opts.Set("_pragma", "journal_mode(WAL)")
	opts.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.cfg.BusyTimeout.Milliseconds()))
	opts.Add("_pragma", "foreign_keys(ON)")

	return opts.Encode()
}
