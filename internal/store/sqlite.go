package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/context-flow/internal/fingerprint"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// sqliteStore keeps parsed artifact metadata in SQLite so repeated runs only
// re-read artifacts whose size or mtime changed. The directory stays the
// source of truth: every Find re-lists it and reconciles the table first.
type sqliteStore struct {
	*dirStore
	db  *sql.DB
	key string
}

func newSQLiteStore(dir *dirStore, path string) (*sqliteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("index path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create index directory: %w", ErrUnavailable, err)
	}
	key, err := filepath.Abs(dir.Dir())
	if err != nil {
		return nil, fmt.Errorf("resolve context dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &sqliteStore{dirStore: dir, db: db, key: key}
	if err := s.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		version := migrationVersion(entry.Name())
		if entry.IsDir() || version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename ("001_init.sql" -> 1).
func migrationVersion(name string) int {
	end := strings.IndexFunc(name, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return 0
	}
	if end < 0 {
		end = len(name)
	}
	n, _ := strconv.Atoi(name[:end])
	return n
}

func (s *sqliteStore) Find(ctx context.Context, probe Probe) (*Match, error) {
	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}
	if err := s.reconcile(ctx, files); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, video_path, video_filename, video_hash
		 FROM artifacts
		 WHERE dir = ? AND corrupt = 0
		   AND (video_path = ? OR video_filename = ? OR (? <> '' AND video_hash = ?))
		 ORDER BY name`,
		s.key, probe.Path, probe.Filename, string(probe.Fingerprint), string(probe.Fingerprint),
	)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, hash string
		var m meta
		if err := rows.Scan(&name, &m.VideoPath, &m.VideoFilename, &hash); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		m.VideoHash = fingerprint.Fingerprint(hash)
		if rule, ok := match(probe, m); ok {
			return &Match{ArtifactPath: filepath.Join(s.dir, name), Rule: rule}, nil
		}
	}
	return nil, rows.Err()
}

type indexedFile struct {
	size    int64
	mtimeNs int64
}

// reconcile brings the table in line with the current directory listing.
func (s *sqliteStore) reconcile(ctx context.Context, files []artifactFile) error {
	known := make(map[string]indexedFile)
	rows, err := s.db.QueryContext(ctx, `SELECT name, size, mtime_ns FROM artifacts WHERE dir = ?`, s.key)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	for rows.Next() {
		var name string
		var f indexedFile
		if err := rows.Scan(&name, &f.size, &f.mtimeNs); err != nil {
			rows.Close()
			return fmt.Errorf("scan index row: %w", err)
		}
		known[name] = f
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range files {
		prev, ok := known[f.name]
		delete(known, f.name)
		if ok && prev.size == f.size && prev.mtimeNs == f.modTime.UnixNano() {
			continue
		}

		m, readErr := readMeta(f.path)
		if readErr != nil {
			s.logger.Warn(ctx, "Error checking metadata in %s: %v", f.path, readErr)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO artifacts (dir, name, size, mtime_ns, corrupt, video_path, video_filename, video_hash)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(dir, name) DO UPDATE SET
			   size = excluded.size,
			   mtime_ns = excluded.mtime_ns,
			   corrupt = excluded.corrupt,
			   video_path = excluded.video_path,
			   video_filename = excluded.video_filename,
			   video_hash = excluded.video_hash`,
			s.key, f.name, f.size, f.modTime.UnixNano(), readErr != nil,
			m.VideoPath, m.VideoFilename, string(m.VideoHash),
		); err != nil {
			return fmt.Errorf("index %s: %w", f.name, err)
		}
	}

	for name := range known {
		if _, err := tx.ExecContext(ctx, `DELETE FROM artifacts WHERE dir = ? AND name = ?`, s.key, name); err != nil {
			return fmt.Errorf("prune %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index update: %w", err)
	}
	return nil
}
