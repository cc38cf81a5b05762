// Package escalation runs the alert escalation monitor: it fans fresh
// alerts out to responder webhooks, escalates alerts whose accept window
// lapsed, and raises unstaffed crises to operations.
package escalation

import (
	"context"
	"time"

	"github.com/trygglabs/trygg/internal/escalation"
	"github.com/trygglabs/trygg/internal/notify"
	"github.com/trygglabs/trygg/internal/progress"
	"github.com/trygglabs/trygg/internal/redis"
	"github.com/trygglabs/trygg/internal/roster"
	"github.com/trygglabs/trygg/internal/setup"
	"github.com/trygglabs/trygg/internal/setup/telemetry"
	"github.com/trygglabs/trygg/internal/worker/core"
	"github.com/trygglabs/trygg/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 15 * time.Second
	errorBackoff        = 10 * time.Second
)

// Worker drives the escalation dispatcher on a polling loop.
type Worker struct {
	dispatcher *escalation.Dispatcher
	notifier   *notify.Notifier
	reporter   *core.StatusReporter
	bar        *progress.Bar
	poll       time.Duration
	logger     *zap.Logger
}

// New creates an escalation monitor worker from the shared application
// bundle.
func New(app *setup.App, bar *progress.Bar, workerID string, logger *zap.Logger) (*Worker, error) {
	scheduleClient, err := app.RedisManager.GetClient(redis.EscalationDBIndex)
	if err != nil {
		return nil, err
	}

	requestTimeout := telemetry.ServiceWorker.GetRequestTimeout(app.Config)

	rosterSvc, err := roster.New(&app.Config.Common, app.RedisManager, logger, requestTimeout)
	if err != nil {
		return nil, err
	}

	notifier := notify.New(&app.Config.Common.Notify, logger)
	schedule := escalation.NewSchedule(scheduleClient, logger)
	dispatcher := escalation.NewDispatcher(
		app.DB, schedule, rosterSvc, notifier, &app.Config.Worker.Escalation, logger,
	)

	poll := time.Duration(app.Config.Worker.Escalation.PollInterval) * time.Millisecond
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return &Worker{
		dispatcher: dispatcher,
		notifier:   notifier,
		reporter:   core.NewStatusReporter(app.StatusClient, core.EscalationWorkerType, workerID, logger),
		bar:        bar,
		poll:       poll,
		logger:     logger.Named("escalation_worker"),
	}, nil
}

// Start begins the monitor's main loop. It blocks until the context is
// cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Escalation monitor started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)

	defer w.reporter.Stop()
	defer w.notifier.Close(context.WithoutCancel(ctx))

	w.bar.SetTotal(100)

	// Rebuild the deadline schedule so alerts opened while no monitor
	// was running still escalate on time.
	w.bar.SetStepMessage("Reconciling deadline schedule", 0)
	w.reporter.UpdateStatus("Reconciling deadline schedule", 0)

	for {
		err := w.dispatcher.Reconcile(ctx)
		if err == nil {
			break
		}

		w.logger.Error("Failed to reconcile deadline schedule", zap.Error(err))
		w.reporter.SetHealthy(false)

		if !utils.ErrorSleep(ctx, errorBackoff, w.logger, "escalation monitor") {
			return
		}
	}

	for {
		if utils.ContextGuardWithLog(ctx, w.logger, "Context cancelled, stopping escalation monitor") {
			return
		}

		w.bar.Reset()
		w.reporter.SetHealthy(true)

		// Step 1: Fan out alerts waiting in the outbox (30%)
		w.bar.SetStepMessage("Broadcasting pending alerts", 30)
		w.reporter.UpdateStatus("Broadcasting pending alerts", 30)

		sent, err := w.dispatcher.BroadcastPending(ctx)
		if err != nil {
			w.logger.Error("Failed to broadcast pending alerts", zap.Error(err))
			w.reporter.SetHealthy(false)

			if !utils.ErrorSleep(ctx, errorBackoff, w.logger, "escalation monitor") {
				return
			}

			continue
		}

		// Step 2: Escalate alerts whose accept window lapsed (70%)
		w.bar.SetStepMessage("Processing due deadlines", 70)
		w.reporter.UpdateStatus("Processing due deadlines", 70)

		advanced, err := w.dispatcher.ProcessDue(ctx)
		if err != nil {
			w.logger.Error("Failed to process due deadlines", zap.Error(err))
			w.reporter.SetHealthy(false)

			if !utils.ErrorSleep(ctx, errorBackoff, w.logger, "escalation monitor") {
				return
			}

			continue
		}

		if sent > 0 || advanced > 0 {
			w.logger.Info("Completed escalation cycle",
				zap.Int("broadcast", sent),
				zap.Int("escalated", advanced))
		}

		// Step 3: Idle until the next poll (100%)
		w.bar.SetStepMessage("Waiting for next cycle", 100)
		w.reporter.UpdateStatus("Waiting for next cycle", 100)

		if !utils.IntervalSleep(ctx, w.poll, w.logger, "escalation monitor") {
			return
		}
	}
}
