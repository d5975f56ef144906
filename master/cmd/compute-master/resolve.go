package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/computeplane/computeplane/master/internal/config"
	"github.com/computeplane/computeplane/master/internal/kubernetes"
	"github.com/computeplane/computeplane/master/pkg/model"
	"github.com/computeplane/computeplane/master/pkg/tasks"
)

type resolveArgs struct {
	userID        int
	username      string
	project       string
	computeSpecID int
	hardwareID    int
	trackingID    string
}

// resolution is what resolve prints: the job template, the orchestrator-neutral task
// specification and its projection for the configured orchestrator.
type resolution struct {
	TrackingID  string                  `json:"tracking_id"`
	JobTemplate *model.JobTemplate      `json:"job_template"`
	TaskSpec    model.TaskSpecification `json:"task_spec"`
	Swarm       interface{}             `json:"swarm,omitempty"`
	Kubernetes  interface{}             `json:"kubernetes,omitempty"`
}

func newResolveCmd() *cobra.Command {
	var args resolveArgs
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "resolve a job template and print the task specification for the orchestrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return runResolve(ctx, a, args, cmd.OutOrStdout())
			})
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&args.userID, "user-id", 0, "id of the requesting user")
	flags.StringVar(&args.username, "username", "", "name of the requesting user")
	flags.StringVar(&args.project, "project", "", "project the job is launched in")
	flags.IntVar(&args.computeSpecID, "compute-spec", 0, "compute spec config id")
	flags.IntVar(&args.hardwareID, "hardware", 0,
		"hardware config id, defaults to the compute spec's default hardware")
	flags.StringVar(&args.trackingID, "tracking-id", "",
		"tracking id of the compute session, generated when empty")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("compute-spec")
	return cmd
}

func runResolve(ctx context.Context, a *app, args resolveArgs, out io.Writer) error {
	user := &model.User{ID: model.UserID(args.userID), Username: args.username}

	hardwareID := args.hardwareID
	if hardwareID == 0 {
		hw, err := a.templates.DefaultHardware(ctx, user, args.project, args.computeSpecID)
		if err != nil {
			return errors.Wrap(err, "no --hardware given")
		}
		hardwareID = hw.ID
	}

	tmpl, err := a.templates.Resolve(ctx, user, args.project, args.computeSpecID, hardwareID)
	if err != nil {
		return err
	}
	spec, err := tasks.Build(*tmpl)
	if err != nil {
		return err
	}

	res := resolution{
		TrackingID:  args.trackingID,
		JobTemplate: tmpl,
		TaskSpec:    spec,
	}
	if res.TrackingID == "" {
		res.TrackingID = model.NewTrackingID()
	}

	switch a.config.Orchestrator.Type {
	case config.KubernetesOrchestrator:
		pod, err := kubernetes.Pod(spec, kubernetes.PodOptions{
			Namespace:  a.config.Orchestrator.Namespace,
			TrackingID: res.TrackingID,
			NamePrefix: tmpl.ComputeSpec.Name,
		})
		if err != nil {
			return err
		}
		res.Kubernetes = pod
	default:
		swarmSpec, err := tasks.ToSwarm(spec)
		if err != nil {
			return err
		}
		res.Swarm = swarmSpec
	}

	bs, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding resolution")
	}
	_, err = fmt.Fprintln(out, string(bs))
	return err
}
