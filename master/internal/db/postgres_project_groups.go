package db

import (
	"context"

	"github.com/pkg/errors"
)

// ProjectGroups returns the groups a project belongs to, sorted by name.
func (db *PgDB) ProjectGroups(ctx context.Context, project string) ([]string, error) {
	groups := []string{}
	err := db.sql.SelectContext(ctx, &groups, `
SELECT group_name FROM project_groups
WHERE project = $1
ORDER BY group_name`, project)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing groups of project %q", project)
	}
	return groups, nil
}

// AddProjectToGroup records group membership. Adding an existing membership is a no-op.
func (db *PgDB) AddProjectToGroup(ctx context.Context, project, group string) error {
	_, err := db.sql.ExecContext(ctx, `
INSERT INTO project_groups (project, group_name)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`, project, group)
	return errors.Wrapf(err, "error adding project %q to group %q", project, group)
}

// RemoveProjectFromGroup deletes a group membership, or returns ErrNotFound.
func (db *PgDB) RemoveProjectFromGroup(ctx context.Context, project, group string) error {
	res, err := db.sql.ExecContext(ctx, `
DELETE FROM project_groups
WHERE project = $1 AND group_name = $2`, project, group)
	return MustHaveAffectedRows(res, err)
}
