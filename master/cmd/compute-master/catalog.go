package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/computeplane/computeplane/master/internal/configstore"
	"github.com/computeplane/computeplane/master/pkg/model"
)

type catalogListArgs struct {
	kind     string
	project  string
	userID   int
	username string
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "inspect the compute config catalog",
	}
	cmd.AddCommand(newCatalogListCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var args catalogListArgs
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list catalog entries, optionally only those available to a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runCatalogList(ctx, a.catalog, args, cmd.OutOrStdout())
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&args.kind, "kind", "",
		"only list one kind [compute_spec, hardware, constraint]")
	flags.StringVar(&args.project, "project", "", "only list entries available to this project")
	flags.IntVar(&args.userID, "user-id", 0, "id of the requesting user, with --project")
	flags.StringVar(&args.username, "username", "", "name of the requesting user, with --project")
	return cmd
}

// catalogListing is keyed like a seed file so that the output reads the same way.
type catalogListing struct {
	ComputeSpecs []*model.ComputeSpecConfig `json:"compute_specs,omitempty"`
	Hardware     []*model.HardwareConfig    `json:"hardware,omitempty"`
	Constraints  []*model.ConstraintConfig  `json:"constraints,omitempty"`
}

func runCatalogList(
	ctx context.Context, c *configstore.Catalog, args catalogListArgs, out io.Writer,
) error {
	kinds := map[model.ConfigKind]bool{}
	switch kind := model.ConfigKind(args.kind); kind {
	case "":
		kinds[model.ComputeSpecKind] = true
		kinds[model.HardwareKind] = true
		kinds[model.ConstraintKind] = true
	case model.ComputeSpecKind, model.HardwareKind, model.ConstraintKind:
		kinds[kind] = true
	default:
		return errors.Errorf("unknown config kind %q", args.kind)
	}

	user := model.User{ID: model.UserID(args.userID), Username: args.username}
	var listing catalogListing
	var err error
	if kinds[model.ComputeSpecKind] {
		if listing.ComputeSpecs, err = list(ctx, c.ComputeSpecs, user, args.project); err != nil {
			return err
		}
	}
	if kinds[model.HardwareKind] {
		if listing.Hardware, err = list(ctx, c.Hardware, user, args.project); err != nil {
			return err
		}
	}
	if kinds[model.ConstraintKind] {
		if listing.Constraints, err = list(ctx, c.Constraints, user, args.project); err != nil {
			return err
		}
	}

	bs, err := yaml.Marshal(listing)
	if err != nil {
		return errors.Wrap(err, "encoding catalog")
	}
	_, err = fmt.Fprint(out, string(bs))
	return err
}

func list[T model.ComputeConfig](
	ctx context.Context, s *configstore.Store[T], user model.User, project string,
) ([]T, error) {
	if project == "" {
		return s.List(ctx)
	}
	return s.ListAvailable(ctx, user, project)
}
