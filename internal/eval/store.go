package eval

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Store persists evaluation run history in a project-local SQLite file so
// pass rates and latency can be compared across runs.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultStorePath returns the project-local history database path.
func DefaultStorePath(projectRoot string) string {
	return filepath.Join(projectRoot, ".voyagent", "eval.db")
}

// OpenStore opens the history database at the given path, creating parent
// directories and the schema as needed. WAL mode is enabled for
// concurrent reads.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS eval_runs (
	id TEXT PRIMARY KEY,
	scenario_id TEXT NOT NULL,
	mode TEXT NOT NULL,
	passed INTEGER NOT NULL,
	content_score REAL NOT NULL DEFAULT 0.0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	providers TEXT,
	error TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_eval_runs_scenario ON eval_runs(scenario_id);
CREATE INDEX IF NOT EXISTS idx_eval_runs_mode ON eval_runs(mode);
`

// RunRecord is one persisted scenario outcome.
type RunRecord struct {
	ID           string
	ScenarioID   string
	Mode         Mode
	Passed       bool
	ContentScore float64
	LatencyMS    int64
	Providers    string
	Error        string
	CreatedAt    time.Time
}

// Record persists one result.
func (s *Store) Record(res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	providers := ""
	if res.Response != nil {
		providers = joinProviders(res.Response.ProvidersInvoked)
	}
	errMsg := ""
	if res.Err != nil {
		errMsg = res.Err.Error()
	}

	_, err := s.conn.Exec(`
		INSERT INTO eval_runs (id, scenario_id, mode, passed, content_score, latency_ms, providers, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), res.Scenario.ID, string(res.Mode), boolToInt(res.Passed),
		res.ContentScore, res.Latency.Milliseconds(), providers, errMsg, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// History returns the most recent records for a scenario, newest first.
// An empty scenarioID returns records across all scenarios.
func (s *Store) History(scenarioID string, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 20
	}

	query := `
		SELECT id, scenario_id, mode, passed, content_score, latency_ms, providers, error, created_at
		FROM eval_runs`
	args := []interface{}{}
	if scenarioID != "" {
		query += " WHERE scenario_id = ?"
		args = append(args, scenarioID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var mode string
		var passed int
		if err := rows.Scan(&r.ID, &r.ScenarioID, &mode, &passed, &r.ContentScore,
			&r.LatencyMS, &r.Providers, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Mode = Mode(mode)
		r.Passed = passed != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// PassRate returns the fraction of recorded runs that passed for a mode.
func (s *Store) PassRate(mode Mode) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, passed int
	row := s.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(passed), 0) FROM eval_runs WHERE mode = ?`,
		string(mode))
	if err := row.Scan(&total, &passed); err != nil {
		return 0, fmt.Errorf("query pass rate: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(passed) / float64(total), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
