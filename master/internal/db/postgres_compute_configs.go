package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// ComputeConfigRow is one stored compute configuration. Body holds the JSON encoding of the
// config, with kind selecting which of the three config types it is.
type ComputeConfigRow struct {
	bun.BaseModel `bun:"table:compute_configs"`

	ID        int       `bun:"id,pk,autoincrement"`
	Kind      string    `bun:"kind,notnull"`
	Body      string    `bun:"body,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// InsertComputeConfig stores a new config of the given kind and returns its id.
func (db *PgDB) InsertComputeConfig(ctx context.Context, kind string, body []byte) (int, error) {
	row := ComputeConfigRow{Kind: kind, Body: string(body)}
	if _, err := Bun().NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return 0, errors.Wrapf(MatchSentinelError(err), "inserting %s config", kind)
	}
	return row.ID, nil
}

// ComputeConfigByID returns the body of a config, or ErrNotFound.
func (db *PgDB) ComputeConfigByID(ctx context.Context, kind string, id int) ([]byte, error) {
	var row ComputeConfigRow
	err := Bun().NewSelect().Model(&row).
		Where("kind = ?", kind).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, MatchSentinelError(err)
	}
	return []byte(row.Body), nil
}

// ComputeConfigExists reports whether a config of the given kind and id is stored.
func (db *PgDB) ComputeConfigExists(ctx context.Context, kind string, id int) (bool, error) {
	exists, err := Bun().NewSelect().Model((*ComputeConfigRow)(nil)).
		Where("kind = ?", kind).
		Where("id = ?", id).
		Exists(ctx)
	return exists, errors.Wrapf(err, "checking %s config %d", kind, id)
}

// ComputeConfigs returns every config of the given kind in id order.
func (db *PgDB) ComputeConfigs(ctx context.Context, kind string) ([]ComputeConfigRow, error) {
	rows := []ComputeConfigRow{}
	err := Bun().NewSelect().Model(&rows).
		Where("kind = ?", kind).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s configs", kind)
	}
	return rows, nil
}

// UpdateComputeConfig replaces the body of a config, or returns ErrNotFound.
func (db *PgDB) UpdateComputeConfig(ctx context.Context, kind string, id int, body []byte) error {
	res, err := Bun().NewUpdate().Model((*ComputeConfigRow)(nil)).
		Set("body = ?", string(body)).
		Set("updated_at = NOW()").
		Where("kind = ?", kind).
		Where("id = ?", id).
		Exec(ctx)
	return MustHaveAffectedRows(res, err)
}

// DeleteComputeConfig removes a config, or returns ErrNotFound.
func (db *PgDB) DeleteComputeConfig(ctx context.Context, kind string, id int) error {
	res, err := Bun().NewDelete().Model((*ComputeConfigRow)(nil)).
		Where("kind = ?", kind).
		Where("id = ?", id).
		Exec(ctx)
	return MustHaveAffectedRows(res, err)
}
