package escalation

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/notify"
	"github.com/trygglabs/trygg/internal/roster"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
)

const (
	defaultFollowupFactor = 0.5
	defaultMinWindow      = 2 * time.Minute
	defaultMaxEscalations = 3
	defaultBatch          = 25

	// opsPageAttempts is how many failed broadcast rounds an alert gets
	// before operations is paged about the delivery problem itself.
	opsPageAttempts = 3
)

// InitialSLA returns the accept window for a fresh alert with the
// configured default applied.
func InitialSLA(cfg *config.Escalation) time.Duration {
	if cfg.InitialSLA > 0 {
		return time.Duration(cfg.InitialSLA) * time.Millisecond
	}

	return types.DefaultInitialSLA
}

// FollowupWindow returns the accept window for the given escalation rung.
// Each rung shrinks the window by the follow-up factor, floored at the
// minimum window, so later pages come faster without thrashing.
func FollowupWindow(cfg *config.Escalation, escalations int) time.Duration {
	factor := cfg.FollowupFactor
	if factor <= 0 || factor > 1 {
		factor = defaultFollowupFactor
	}

	minWindow := defaultMinWindow
	if cfg.MinWindow > 0 {
		minWindow = time.Duration(cfg.MinWindow) * time.Millisecond
	}

	window := time.Duration(float64(InitialSLA(cfg)) * math.Pow(factor, float64(escalations)))
	if window < minWindow {
		return minWindow
	}

	return window
}

// MaxEscalations returns the ladder bound with the default applied.
func MaxEscalations(cfg *config.Escalation) int {
	if cfg.MaxEscalations > 0 {
		return cfg.MaxEscalations
	}

	return defaultMaxEscalations
}

// Dispatcher runs alert fan-out and deadline handling. One instance per
// monitor worker; concurrent monitors are safe because every state change
// goes through the locked safety service and Redis writes are idempotent.
type Dispatcher struct {
	db       database.Client
	schedule *Schedule
	roster   *roster.Service
	notifier *notify.Notifier
	cfg      *config.Escalation
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher from its collaborators.
func NewDispatcher(
	db database.Client,
	schedule *Schedule,
	rosterSvc *roster.Service,
	notifier *notify.Notifier,
	cfg *config.Escalation,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		db:       db,
		schedule: schedule,
		roster:   rosterSvc,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.Named("escalation_dispatcher"),
	}
}

// Reconcile rebuilds the deadline schedule from the database. Run at
// startup so alerts opened while no monitor was running still escalate.
func (d *Dispatcher) Reconcile(ctx context.Context) error {
	alerts, err := d.db.Model().Alert().ListOpenAlerts(ctx)
	if err != nil {
		return err
	}

	if err := d.schedule.Clear(ctx); err != nil {
		return err
	}

	for _, alert := range alerts {
		if err := d.schedule.Track(ctx, alert.ID, alert.DeadlineAt); err != nil {
			return err
		}
	}

	d.logger.Info("Rebuilt deadline schedule", zap.Int("alerts", len(alerts)))

	return nil
}

// BroadcastPending fans out every alert still waiting in the outbox and
// returns how many were sent. Per-alert failures are logged and retried
// on the next cycle.
func (d *Dispatcher) BroadcastPending(ctx context.Context) (int, error) {
	alerts, err := d.db.Model().Alert().ListUnbroadcast(ctx, d.batch())
	if err != nil {
		return 0, err
	}

	var sent int

	for _, alert := range alerts {
		if err := d.broadcast(ctx, alert); err != nil {
			d.logger.Error("Failed to broadcast alert",
				zap.String("alertID", alert.ID.String()),
				zap.Error(err))

			continue
		}

		sent++
	}

	return sent, nil
}

// ProcessDue escalates every alert whose accept deadline has lapsed and
// returns how many were advanced.
func (d *Dispatcher) ProcessDue(ctx context.Context) (int, error) {
	due, err := d.schedule.Due(ctx, time.Now().UTC(), d.batch())
	if err != nil {
		return 0, err
	}

	var advanced int

	for _, alertID := range due {
		if err := d.escalate(ctx, alertID); err != nil {
			if errors.Is(err, types.ErrAlertNotFound) {
				// The row is gone; nothing left to escalate.
				if err := d.schedule.Forget(ctx, alertID); err != nil {
					d.logger.Error("Failed to drop vanished alert", zap.Error(err))
				}

				continue
			}

			d.logger.Error("Failed to escalate overdue alert",
				zap.String("alertID", alertID.String()),
				zap.Error(err))

			continue
		}

		advanced++
	}

	return advanced, nil
}

// broadcast delivers one alert to its current responder scope. Fan-out is
// at-least-once: the deadline is tracked before the outbox stamp, so a
// crash in between pages the same responders again rather than dropping
// the alert.
func (d *Dispatcher) broadcast(ctx context.Context, alert *types.Alert) error {
	attempts, err := d.schedule.RecordAttempt(ctx, alert.ID)
	if err != nil {
		d.logger.Warn("Failed to record broadcast attempt",
			zap.String("alertID", alert.ID.String()),
			zap.Error(err))
	}

	incident, err := d.db.Model().Safety().GetIncident(ctx, alert.IncidentID)
	if err != nil {
		d.logger.Warn("Broadcasting alert without incident detail",
			zap.String("alertID", alert.ID.String()),
			zap.Error(err))

		incident = nil
	}

	scope, err := d.roster.ForLevel(ctx, alert.Scope)
	if err != nil {
		// No scopes anywhere. The alert still rides the deadline ladder
		// toward the unstaffed page, so stamp it broadcast instead of
		// spinning on the outbox every cycle.
		d.logger.Error("No responder scopes available for alert",
			zap.String("alertID", alert.ID.String()),
			zap.Error(err))

		if pageErr := d.notifier.PageFault(ctx, "alert_broadcast", err); pageErr != nil &&
			!errors.Is(pageErr, notify.ErrNoOpsWebhook) {
			d.logger.Error("Failed to page operations about empty roster", zap.Error(pageErr))
		}
	} else {
		delivered := d.notifier.BroadcastAlert(ctx, scope.Webhooks, scope.Name, alert, incident)

		if delivered == 0 {
			d.logger.Error("Alert broadcast reached no webhooks",
				zap.String("alertID", alert.ID.String()),
				zap.String("scope", scope.Name),
				zap.Int64("attempts", attempts))

			if attempts >= opsPageAttempts {
				if pageErr := d.notifier.PageFault(ctx, "alert_broadcast",
					errors.New("alert broadcasts are reaching no webhooks")); pageErr != nil &&
					!errors.Is(pageErr, notify.ErrNoOpsWebhook) {
					d.logger.Error("Failed to page operations about failing broadcasts", zap.Error(pageErr))
				}
			}
		} else {
			d.logger.Info("Broadcast alert to responder scope",
				zap.String("alertID", alert.ID.String()),
				zap.String("scope", scope.Name),
				zap.Int("delivered", delivered),
				zap.Int("escalations", alert.Escalations))
		}
	}

	if err := d.schedule.Track(ctx, alert.ID, alert.DeadlineAt); err != nil {
		return err
	}

	return d.db.Model().Alert().MarkBroadcast(ctx, alert.ID, time.Now().UTC())
}

// escalate advances one due alert through the safety service and keeps
// the schedule in step with the outcome.
func (d *Dispatcher) escalate(ctx context.Context, alertID uuid.UUID) error {
	peek, err := d.db.Model().Alert().GetAlert(ctx, alertID)
	if err != nil {
		return err
	}

	followup := FollowupWindow(d.cfg, peek.Escalations+1)

	alert, unstaffed, err := d.db.Service().Safety().EscalateAlert(ctx, alertID, followup, MaxEscalations(d.cfg))
	if err != nil {
		return err
	}

	if unstaffed {
		if err := d.schedule.Forget(ctx, alertID); err != nil {
			d.logger.Error("Failed to drop unstaffed alert from schedule", zap.Error(err))
		}

		d.logger.Error("Escalation ladder exhausted without accept",
			zap.String("alertID", alertID.String()),
			zap.String("userID", alert.UserID.String()),
			zap.Int("escalations", alert.Escalations))

		if err := d.notifier.PageUnstaffed(ctx, alert); err != nil {
			d.logger.Error("Failed to page operations about unstaffed crisis",
				zap.String("alertID", alertID.String()),
				zap.Error(err))
		}

		return nil
	}

	if !alert.Open() {
		// Accepted while we were looking; stop timing it.
		return d.schedule.Forget(ctx, alertID)
	}

	// Still open, whether escalated just now or already rebroadcast by
	// another monitor. Either way the row holds the live deadline.
	return d.schedule.Track(ctx, alertID, alert.DeadlineAt)
}

func (d *Dispatcher) batch() int {
	if d.cfg.BroadcastBatch > 0 {
		return d.cfg.BroadcastBatch
	}

	return defaultBatch
}
