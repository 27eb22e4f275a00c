// Package reconciler drains the classification result and error streams and
// feeds each delivery into the image system. Processing failures are isolated
// per message: a malformed payload or an unknown id is logged and dropped, and
// the loop moves on to the next message.
package reconciler

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mwhitlock/prism/internal/images"
	"github.com/mwhitlock/prism/pkg/broker"
	"github.com/mwhitlock/prism/pkg/lifecycle"
	"github.com/mwhitlock/prism/pkg/metrics"
)

// Reconciler consumes result and error deliveries from the job channel.
type Reconciler struct {
	images  images.System
	broker  broker.System
	metrics metrics.System
	logger  *slog.Logger
}

// New creates a Reconciler over the given image system and broker.
func New(sys images.System, br broker.System, m metrics.System, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		images:  sys,
		broker:  br,
		metrics: m,
		logger:  logger.With("system", "reconciler"),
	}
}

// Start launches one consumption loop per stream and registers a shutdown
// hook that closes both consumers once the lifecycle context is cancelled.
// In-flight messages finish before the loops exit.
func (r *Reconciler) Start(lc *lifecycle.Coordinator) error {
	results := r.broker.Results()
	failures := r.broker.Errors()

	go func() {
		g, ctx := errgroup.WithContext(lc.Context())
		g.Go(func() error { return r.consume(ctx, results, r.handleResult) })
		g.Go(func() error { return r.consume(ctx, failures, r.handleFailure) })

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("reconciler stopped", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := results.Close(); err != nil {
			r.logger.Error("results consumer close failed", "error", err)
		}
		if err := failures.Close(); err != nil {
			r.logger.Error("errors consumer close failed", "error", err)
		}

		r.logger.Info("reconciler stopped")
	})

	r.logger.Info("reconciler started")
	return nil
}

// consume fetches, handles, and commits messages until the context is
// cancelled or the consumer is closed. Every fetched message is committed,
// including ones whose handling failed: redelivering a payload this loop has
// already rejected would only reject it again.
func (r *Reconciler) consume(
	ctx context.Context,
	c broker.Consumer,
	handle func(ctx context.Context, payload string),
) error {
	for {
		msg, err := c.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		handle(ctx, string(msg.Value))

		if err := c.Commit(ctx, msg); err != nil {
			r.logger.Error("commit failed",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (r *Reconciler) handleResult(ctx context.Context, payload string) {
	res, err := ParseResult(payload)
	if err != nil {
		r.metrics.RecordProcessingFailure()
		r.logger.Warn("dropping malformed result message", "payload", payload, "error", err)
		return
	}

	if err := r.images.ApplyResult(ctx, res.ID, res.Label, res.Confidence); err != nil {
		r.logger.Warn("result apply failed", "id", res.ID, "error", err)
		return
	}

	r.logger.Info("result reconciled",
		"id", res.ID,
		"result", res.Label,
		"confidence", res.Confidence,
	)
}

func (r *Reconciler) handleFailure(ctx context.Context, payload string) {
	f, err := ParseFailure(payload)
	if err != nil {
		r.metrics.RecordProcessingFailure()
		r.logger.Warn("dropping malformed error message", "payload", payload, "error", err)
		return
	}

	if err := r.images.ApplyFailure(ctx, f.ID, f.Message); err != nil {
		r.logger.Warn("failure apply failed", "id", f.ID, "error", err)
		return
	}

	r.logger.Info("failure reconciled", "id", f.ID)
}
