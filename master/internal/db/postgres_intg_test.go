//go:build integration
// +build integration

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestComputeConfigCRUD(t *testing.T) {
	ctx := context.Background()
	pgDB := MustResolveTestPostgres(t)
	defer PostTestTeardown()

	kind := "test-" + uuid.NewString()
	id, err := pgDB.InsertComputeConfig(ctx, kind, []byte(`{"name":"a"}`))
	require.NoError(t, err)

	body, err := pgDB.ComputeConfigByID(ctx, kind, id)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"a"}`, string(body))

	exists, err := pgDB.ComputeConfigExists(ctx, kind, id)
	require.NoError(t, err)
	require.True(t, exists)

	_, err = pgDB.ComputeConfigByID(ctx, "other-"+kind, id)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, pgDB.UpdateComputeConfig(ctx, kind, id, []byte(`{"name":"b"}`)))
	rows, err := pgDB.ComputeConfigs(ctx, kind)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.JSONEq(t, `{"name":"b"}`, rows[0].Body)

	require.NoError(t, pgDB.DeleteComputeConfig(ctx, kind, id))
	require.ErrorIs(t, pgDB.DeleteComputeConfig(ctx, kind, id), ErrNotFound)
	require.ErrorIs(t, pgDB.UpdateComputeConfig(ctx, kind, id, []byte(`{}`)), ErrNotFound)
}

func TestProjectGroups(t *testing.T) {
	ctx := context.Background()
	pgDB := MustResolveTestPostgres(t)
	defer PostTestTeardown()

	project := "p-" + uuid.NewString()
	require.NoError(t, pgDB.AddProjectToGroup(ctx, project, "zeta"))
	require.NoError(t, pgDB.AddProjectToGroup(ctx, project, "alpha"))
	require.NoError(t, pgDB.AddProjectToGroup(ctx, project, "alpha"))

	groups, err := pgDB.ProjectGroups(ctx, project)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "zeta"}, groups)

	require.NoError(t, pgDB.RemoveProjectFromGroup(ctx, project, "zeta"))
	require.ErrorIs(t, pgDB.RemoveProjectFromGroup(ctx, project, "zeta"), ErrNotFound)
}

func TestUpdateLifecyclePayloadSerializes(t *testing.T) {
	ctx := context.Background()
	pgDB := MustResolveTestPostgres(t)
	defer PostTestTeardown()

	trackingID := uuid.NewString()
	_, err := pgDB.LifecyclePayload(ctx, trackingID)
	require.ErrorIs(t, err, ErrNotFound)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := pgDB.UpdateLifecyclePayload(ctx, trackingID, func(cur []byte) ([]byte, error) {
				var entries []string
				if cur != nil {
					if err := json.Unmarshal(cur, &entries); err != nil {
						return nil, err
					}
				}
				entries = append(entries, fmt.Sprint(i))
				return json.Marshal(entries)
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	payload, err := pgDB.LifecyclePayload(ctx, trackingID)
	require.NoError(t, err)
	var entries []string
	require.NoError(t, json.Unmarshal(payload, &entries))
	require.Len(t, entries, writers)

	ids, err := pgDB.LifecycleTrackingIDs(ctx)
	require.NoError(t, err)
	require.Contains(t, ids, trackingID)
}
