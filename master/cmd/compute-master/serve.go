package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/lifecycle"
	"github.com/computeplane/computeplane/master/pkg/check"
	"github.com/computeplane/computeplane/master/pkg/logger"
	"github.com/computeplane/computeplane/master/pkg/model"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "accept orchestrator lifecycle callbacks and expose metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return withApp(ctx, runServe)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	events := make(chan model.LifecycleEvent, a.config.Lifecycle.BufferSize)
	intakeDone := make(chan struct{})
	go func() {
		defer close(intakeDone)
		// Detached so that queued events are drained after shutdown starts.
		a.tracker.Run(context.Background(), events)
	}()

	e := newEcho(a.tracker, events, clockwork.NewRealClock())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", a.config.Port)
		log.Infof("accepting lifecycle callbacks on %s", addr)
		if err := e.Start(addr); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	close(events)
	<-intakeDone
	return err
}

func newEcho(
	tracker *lifecycle.Tracker, events chan<- model.LifecycleEvent, clock clockwork.Clock,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger.New(logger.Context{"component": "api-server"})
	e.HTTPErrorHandler = api.JSONErrorHandler
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := &lifecycleHandlers{tracker: tracker, events: events, clock: clock}
	g := e.Group("/api/v1/lifecycle")
	g.POST("/events", h.postEvent)
	g.GET("/sessions", h.getTrackingIDs)
	g.GET("/sessions/:tracking_id", h.getEntries)
	g.GET("/sessions/:tracking_id/latest", h.getLatest)
	return e
}

type lifecycleHandlers struct {
	tracker *lifecycle.Tracker
	events  chan<- model.LifecycleEvent
	clock   clockwork.Clock
}

func (h *lifecycleHandlers) postEvent(c echo.Context) error {
	var event model.LifecycleEvent
	if err := c.Bind(&event); err != nil {
		return err
	}
	if event.TrackingID == "" {
		return api.AsValidationError("tracking_id must be provided")
	}
	if err := check.Validate(event); err != nil {
		return api.AsValidationError("invalid lifecycle event: %s", err)
	}
	if event.EventTime.IsZero() {
		event.EventTime = h.clock.Now().UTC()
	}

	select {
	case h.events <- event:
		return c.NoContent(http.StatusAccepted)
	case <-c.Request().Context().Done():
		return echo.NewHTTPError(http.StatusServiceUnavailable, "lifecycle intake is busy")
	}
}

func (h *lifecycleHandlers) getTrackingIDs(c echo.Context) error {
	ids, err := h.tracker.TrackingIDs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]string{"tracking_ids": ids})
}

func (h *lifecycleHandlers) getEntries(c echo.Context) error {
	entries, err := h.tracker.Entries(c.Request().Context(), c.Param("tracking_id"))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []lifecycle.Entry{}
	}
	return c.JSON(http.StatusOK, map[string][]lifecycle.Entry{"entries": entries})
}

func (h *lifecycleHandlers) getLatest(c echo.Context) error {
	entry, err := h.tracker.Latest(c.Request().Context(), c.Param("tracking_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}
