package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/warden/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// Init initializes the SQLite database at baseDir/warden.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.warden.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to every pooled connection
	dbPath := filepath.Join(baseDir, "warden.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: form answers keyed by review card
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS formanswers (
		  message_id       INTEGER PRIMARY KEY,
		  user_id          INTEGER NOT NULL,
		  gender           TEXT NOT NULL,
		  is_female        BOOLEAN NOT NULL,
		  is_18_plus       BOOLEAN NOT NULL,
		  is_30_plus       BOOLEAN NOT NULL,
		  diagnosis_status TEXT
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Migration 1 -> 2: explicit decision status, card channel, timestamps
	if version < 2 {
		schema := `
		ALTER TABLE formanswers ADD COLUMN channel_id INTEGER NOT NULL DEFAULT 0;
		ALTER TABLE formanswers ADD COLUMN status TEXT NOT NULL DEFAULT 'pending';
		ALTER TABLE formanswers ADD COLUMN created_at INTEGER NOT NULL DEFAULT 0;
		ALTER TABLE formanswers ADD COLUMN resolved_at INTEGER;
		ALTER TABLE formanswers ADD COLUMN resolved_by INTEGER;

		CREATE INDEX IF NOT EXISTS idx_formanswers_user_created
		ON formanswers(user_id, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_formanswers_status_created
		ON formanswers(status, created_at DESC);

		UPDATE formanswers SET diagnosis_status = 'SelfDiagnosed'
		WHERE diagnosis_status = 'Self Diagnosed';

		UPDATE formanswers SET diagnosis_status = 'FamilyOrFriend'
		WHERE diagnosis_status = 'Family Member or Friend of an Autistic Individual.';
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := SetUserVersion(db, 2); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
