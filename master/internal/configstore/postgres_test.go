package configstore

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/db"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// fakeTable is an in-memory compute_configs table shared across kinds.
type fakeTable struct {
	rows   map[int]db.ComputeConfigRow
	nextID int
}

func newFakeTable() *fakeTable {
	return &fakeTable{rows: map[int]db.ComputeConfigRow{}, nextID: 1}
}

func (f *fakeTable) InsertComputeConfig(_ context.Context, kind string, body []byte) (int, error) {
	id := f.nextID
	f.nextID++
	f.rows[id] = db.ComputeConfigRow{ID: id, Kind: kind, Body: string(body)}
	return id, nil
}

func (f *fakeTable) ComputeConfigByID(_ context.Context, kind string, id int) ([]byte, error) {
	row, ok := f.rows[id]
	if !ok || row.Kind != kind {
		return nil, db.ErrNotFound
	}
	return []byte(row.Body), nil
}

func (f *fakeTable) ComputeConfigExists(ctx context.Context, kind string, id int) (bool, error) {
	_, err := f.ComputeConfigByID(ctx, kind, id)
	return err == nil, nil
}

func (f *fakeTable) ComputeConfigs(_ context.Context, kind string) ([]db.ComputeConfigRow, error) {
	var out []db.ComputeConfigRow
	for _, row := range f.rows {
		if row.Kind == kind {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTable) UpdateComputeConfig(_ context.Context, kind string, id int, body []byte) error {
	row, ok := f.rows[id]
	if !ok || row.Kind != kind {
		return db.ErrNotFound
	}
	row.Body = string(body)
	f.rows[id] = row
	return nil
}

func (f *fakeTable) DeleteComputeConfig(_ context.Context, kind string, id int) error {
	row, ok := f.rows[id]
	if !ok || row.Kind != kind {
		return db.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func TestPostgresCatalog(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	c := NewPostgresCatalog(table, testResolver())

	hw, err := c.CreateHardware(ctx, smallHardware(model.SiteScopeAssignment(true)))
	require.NoError(t, err)
	spec, err := c.CreateComputeSpec(ctx, computeSpec(hw.ID))
	require.NoError(t, err)
	require.NotEqual(t, hw.ID, spec.ID, "ids are shared across kinds")

	// A hardware id is not a compute spec id.
	_, err = c.ComputeSpecs.Get(ctx, hw.ID)
	require.ErrorIs(t, err, api.ErrNotFound)

	got, err := c.Hardware.Get(ctx, hw.ID)
	require.NoError(t, err)
	require.Equal(t, hw, got)

	require.ErrorIs(t, c.DeleteHardware(ctx, hw.ID), ErrInUse)
	require.NoError(t, c.DeleteComputeSpec(ctx, spec.ID))
	require.NoError(t, c.DeleteHardware(ctx, hw.ID))
	require.ErrorIs(t, c.DeleteHardware(ctx, hw.ID), api.ErrNotFound)
}

func TestPostgresRepositoryTrustsRowID(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	repo := NewPostgresRepository[*model.ConstraintConfig](table)

	id, err := table.InsertComputeConfig(ctx, string(model.ConstraintKind),
		[]byte(`{"id": 500, "constraint": {"key": "zone", "values": ["a"], "operator": "IN"}}`))
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, id, list[0].ID)
}
