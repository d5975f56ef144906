package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/computeplane/computeplane/master/internal/config"
	"github.com/computeplane/computeplane/master/internal/lifecycle"
	"github.com/computeplane/computeplane/master/pkg/model"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "inspect and append compute session lifecycle logs",
	}
	cmd.AddCommand(newEventsListCmd(), newEventsAppendCmd())
	return cmd
}

func newEventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [tracking-id]",
		Short: "list tracked sessions, or the log of one session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				var trackingID string
				if len(args) > 0 {
					trackingID = args[0]
				}
				return runEventsList(ctx, a.tracker, trackingID, cmd.OutOrStdout())
			})
		},
	}
}

func runEventsList(
	ctx context.Context, tracker *lifecycle.Tracker, trackingID string, out io.Writer,
) error {
	if trackingID == "" {
		ids, err := tracker.TrackingIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := fmt.Fprintln(out, id); err != nil {
				return err
			}
		}
		return nil
	}

	entries, err := tracker.Entries(ctx, trackingID)
	if err != nil {
		return err
	}
	bs, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding lifecycle log")
	}
	_, err = fmt.Fprintln(out, string(bs))
	return err
}

type eventsAppendArgs struct {
	userID    int
	operation string
	status    string
	progress  int
	message   string
	eventTime string
}

func newEventsAppendCmd() *cobra.Command {
	var args eventsAppendArgs
	cmd := &cobra.Command{
		Use:   "append <tracking-id>",
		Short: "append one lifecycle event to the log of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			event, err := args.event(pos[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				if a.config.Lifecycle.Store == config.MemoryStore {
					log.Warn("lifecycle.store is memory, the event is dropped when the command exits")
				}
				return a.tracker.Record(ctx, event)
			})
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&args.userID, "user-id", 0, "id of the user that launched the session")
	flags.StringVar(&args.operation, "operation", string(model.StartOperation),
		"operation reported on [Start, Stop]")
	flags.StringVar(&args.status, "status", string(model.InProgressStatus),
		"status of the operation [InProgress, Warning, Completed, Failed]")
	flags.IntVar(&args.progress, "progress", 0, "progress percentage, 100 when completed")
	flags.StringVar(&args.message, "message", "", "human readable detail")
	flags.StringVar(&args.eventTime, "time", "", "RFC 3339 event time, defaults to now")
	return cmd
}

func (a eventsAppendArgs) event(trackingID string) (model.LifecycleEvent, error) {
	event := model.LifecycleEvent{
		TrackingID: trackingID,
		UserID:     model.UserID(a.userID),
		Operation:  model.LifecycleOperation(a.operation),
		Status:     model.LifecycleStatus(a.status),
		Progress:   a.progress,
		Message:    a.message,
		EventTime:  time.Now().UTC(),
	}
	if a.eventTime != "" {
		t, err := time.Parse(time.RFC3339, a.eventTime)
		if err != nil {
			return model.LifecycleEvent{}, errors.Wrap(err, "invalid --time")
		}
		event.EventTime = t
	}
	return event, nil
}
