package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS compute_configs (
		id SERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		body JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_compute_configs_kind ON compute_configs (kind, id)`,
	`CREATE TABLE IF NOT EXISTS project_groups (
		project TEXT NOT NULL,
		group_name TEXT NOT NULL,
		PRIMARY KEY (project, group_name)
	)`,
	`CREATE TABLE IF NOT EXISTS lifecycle_logs (
		tracking_id TEXT PRIMARY KEY,
		payload JSONB,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the master needs if they do not exist yet.
func (db *PgDB) EnsureSchema(ctx context.Context) error {
	return Bun().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "running %q", stmt)
			}
		}
		return nil
	})
}
