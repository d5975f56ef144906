package configstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/db"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// ConfigTable is the compute_configs table, implemented by *db.PgDB.
type ConfigTable interface {
	InsertComputeConfig(ctx context.Context, kind string, body []byte) (int, error)
	ComputeConfigByID(ctx context.Context, kind string, id int) ([]byte, error)
	ComputeConfigExists(ctx context.Context, kind string, id int) (bool, error)
	ComputeConfigs(ctx context.Context, kind string) ([]db.ComputeConfigRow, error)
	UpdateComputeConfig(ctx context.Context, kind string, id int, body []byte) error
	DeleteComputeConfig(ctx context.Context, kind string, id int) error
}

// PostgresRepository stores configs of one kind as JSON documents in the compute_configs table.
type PostgresRepository[T model.ComputeConfig] struct {
	table ConfigTable
	kind  string
}

// NewPostgresRepository returns a repository over the given table.
func NewPostgresRepository[T model.ComputeConfig](table ConfigTable) *PostgresRepository[T] {
	return &PostgresRepository[T]{table: table, kind: string(newConfig[T]().Kind())}
}

// Get implements Repository.
func (p *PostgresRepository[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T
	body, err := p.table.ComputeConfigByID(ctx, p.kind, id)
	if err != nil {
		return zero, p.matchNotFound(err, id)
	}
	return p.decodeRow(id, body)
}

// Exists implements Repository.
func (p *PostgresRepository[T]) Exists(ctx context.Context, id int) (bool, error) {
	return p.table.ComputeConfigExists(ctx, p.kind, id)
}

// List implements Repository.
func (p *PostgresRepository[T]) List(ctx context.Context) ([]T, error) {
	rows, err := p.table.ComputeConfigs(ctx, p.kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		cfg, err := p.decodeRow(row.ID, []byte(row.Body))
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

// Insert implements Repository.
func (p *PostgresRepository[T]) Insert(ctx context.Context, cfg T) (T, error) {
	var zero T
	body, err := encode(cfg)
	if err != nil {
		return zero, err
	}
	id, err := p.table.InsertComputeConfig(ctx, p.kind, body)
	if err != nil {
		return zero, err
	}
	return p.decodeRow(id, body)
}

// Replace implements Repository.
func (p *PostgresRepository[T]) Replace(ctx context.Context, cfg T) (T, error) {
	var zero T
	body, err := encode(cfg)
	if err != nil {
		return zero, err
	}
	if err := p.table.UpdateComputeConfig(ctx, p.kind, cfg.ConfigID(), body); err != nil {
		return zero, p.matchNotFound(err, cfg.ConfigID())
	}
	return p.decodeRow(cfg.ConfigID(), body)
}

// Remove implements Repository.
func (p *PostgresRepository[T]) Remove(ctx context.Context, id int) error {
	return p.matchNotFound(p.table.DeleteComputeConfig(ctx, p.kind, id), id)
}

// decodeRow decodes a body, trusting the row id over any id stored in the document.
func (p *PostgresRepository[T]) decodeRow(id int, body []byte) (T, error) {
	cfg, err := decode[T](body)
	if err != nil {
		return cfg, errors.Wrapf(err, "row %d", id)
	}
	cfg.SetConfigID(id)
	return cfg, nil
}

func (p *PostgresRepository[T]) matchNotFound(err error, id int) error {
	if errors.Is(err, db.ErrNotFound) {
		return api.AsErrNotFound("%s config %d", p.kind, id)
	}
	return err
}
