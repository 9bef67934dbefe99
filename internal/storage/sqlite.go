package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding the versioned reference data the
// pipeline depends on: the raw-field mapping, the operator→team table, team
// colors and month names. The tables are seeded by migrations so the data
// can be updated and audited independently of the transformation logic.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the reference database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "vistaboard.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Reference data ---

// FieldMap returns the raw-key → canonical-name mapping for the list columns.
func (s *Store) FieldMap() (map[string]string, error) {
	rows, err := s.db.Query("SELECT raw_key, canonical FROM field_map")
	if err != nil {
		return nil, fmt.Errorf("querying field_map: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var f FieldMapping
		if err := rows.Scan(&f.RawKey, &f.Canonical); err != nil {
			return nil, err
		}
		m[f.RawKey] = f.Canonical
	}
	return m, rows.Err()
}

// OperatorTeams returns the operator → team lookup table. Lookups against it
// are case-sensitive exact matches.
func (s *Store) OperatorTeams() (map[string]string, error) {
	rows, err := s.db.Query("SELECT operator, team FROM operator_teams")
	if err != nil {
		return nil, fmt.Errorf("querying operator_teams: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var ot OperatorTeam
		if err := rows.Scan(&ot.Operator, &ot.Team); err != nil {
			return nil, err
		}
		m[ot.Operator] = ot.Team
	}
	return m, rows.Err()
}

// TeamColors returns the team → display color table, Overview included.
func (s *Store) TeamColors() (map[string]string, error) {
	rows, err := s.db.Query("SELECT team, color FROM team_colors")
	if err != nil {
		return nil, fmt.Errorf("querying team_colors: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var tc TeamColor
		if err := rows.Scan(&tc.Team, &tc.Color); err != nil {
			return nil, err
		}
		m[tc.Team] = tc.Color
	}
	return m, rows.Err()
}

// MonthNames returns the month-number → localized name table.
func (s *Store) MonthNames() (map[int]string, error) {
	rows, err := s.db.Query("SELECT month, name FROM month_names ORDER BY month ASC")
	if err != nil {
		return nil, fmt.Errorf("querying month_names: %w", err)
	}
	defer rows.Close()

	m := make(map[int]string)
	for rows.Next() {
		var month int
		var name string
		if err := rows.Scan(&month, &name); err != nil {
			return nil, err
		}
		m[month] = name
	}
	return m, rows.Err()
}
