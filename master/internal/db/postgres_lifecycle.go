package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// LifecyclePayload returns the stored lifecycle log for a tracking id, or ErrNotFound.
func (db *PgDB) LifecyclePayload(ctx context.Context, trackingID string) ([]byte, error) {
	var payload string
	err := Bun().NewRaw(`
		SELECT payload FROM lifecycle_logs
		WHERE tracking_id = ? AND payload IS NOT NULL`, trackingID).
		Scan(ctx, &payload)
	if err != nil {
		return nil, MatchSentinelError(err)
	}
	return []byte(payload), nil
}

// LifecycleTrackingIDs lists every tracking id with a stored log, most recently updated first.
func (db *PgDB) LifecycleTrackingIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := Bun().NewRaw(`
		SELECT tracking_id FROM lifecycle_logs
		WHERE payload IS NOT NULL
		ORDER BY updated_at DESC, tracking_id`).
		Scan(ctx, &ids)
	if err != nil {
		return nil, errors.Wrap(err, "listing lifecycle logs")
	}
	return ids, nil
}

// UpdateLifecyclePayload runs a read-modify-write of the log stored under the tracking id. The
// row is locked for the duration of the transaction, so concurrent updates of one tracking id are
// applied one after another. fn receives nil when no log exists yet.
func (db *PgDB) UpdateLifecyclePayload(
	ctx context.Context, trackingID string, fn func(current []byte) ([]byte, error),
) error {
	return Bun().RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw(`
			INSERT INTO lifecycle_logs (tracking_id) VALUES (?)
			ON CONFLICT (tracking_id) DO NOTHING`, trackingID).Exec(ctx); err != nil {
			return errors.Wrapf(err, "error creating lifecycle log %s", trackingID)
		}

		var current sql.NullString
		if err := tx.NewRaw(`
			SELECT payload FROM lifecycle_logs
			WHERE tracking_id = ?
			FOR UPDATE`, trackingID).Scan(ctx, &current); err != nil {
			return errors.Wrapf(err, "error locking lifecycle log %s", trackingID)
		}

		var prev []byte
		if current.Valid {
			prev = []byte(current.String)
		}
		next, err := fn(prev)
		if err != nil {
			return err
		}

		if _, err := tx.NewRaw(`
			UPDATE lifecycle_logs SET payload = ?, updated_at = NOW()
			WHERE tracking_id = ?`, string(next), trackingID).Exec(ctx); err != nil {
			return errors.Wrapf(err, "error writing lifecycle log %s", trackingID)
		}
		return nil
	})
}
