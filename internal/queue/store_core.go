package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/RaduRS/automan-sub000/internal/config"
)

// Store persists render jobs in SQLite. Several automan processes may share
// one database; writers retry while another holds the lock.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusy      = 5
	busyAttempts    = 5
	busyBackoff     = 10 * time.Millisecond
	busyBackoffCeil = 200 * time.Millisecond
)

var connectionPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

// Open creates or connects to the job database at cfg.Paths.StatePath.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("open job store: config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	path := strings.TrimSpace(cfg.Paths.StatePath)
	if path == "" {
		path = filepath.Join(cfg.Paths.WorkDir, "jobs.db")
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// dsn applies connectionPragmas to every pooled connection.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connectionPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return withBusyRetry(ctx, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, args...)
	})
}

// withBusyRetry reruns op with exponential backoff while SQLite reports the
// database as locked.
func withBusyRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	delay := busyBackoff
	for attempt := 1; ; attempt++ {
		res, err := op()
		if err == nil || !isBusy(err) || attempt == busyAttempts {
			return res, err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
		delay = min(delay*2, busyBackoffCeil)
	}
}

func isBusy(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusy {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
