package database

import (
	"database/sql"
	"fmt"

	"github.com/phuslu/log"
)

// Schema creates the run history tables
const Schema = `
CREATE TABLE IF NOT EXISTS verification_runs (
	id UUID PRIMARY KEY,
	engine VARCHAR(32) NOT NULL,
	base_url TEXT NOT NULL,
	status VARCHAR(16) NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_verification_runs_started_at ON verification_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_verification_runs_status ON verification_runs(status);

CREATE TABLE IF NOT EXISTS verification_checks (
	seq BIGSERIAL PRIMARY KEY,
	id UUID UNIQUE NOT NULL,
	run_id UUID NOT NULL REFERENCES verification_runs(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	product TEXT NOT NULL DEFAULT '',
	passed BOOLEAN NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verification_checks_run_id ON verification_checks(run_id);
`

// RunMigrations creates the run history tables on DB
func RunMigrations() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}
	return Migrate(DB)
}

// Migrate creates the run history tables on db
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create run history tables: %w", err)
	}

	log.Debug().Msg("database migrations completed successfully")
	return nil
}
