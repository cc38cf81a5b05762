package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/dbretry"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AlertModel handles database operations for responder alerts.
type AlertModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAlert creates a new alert model.
func NewAlert(db *bun.DB, logger *zap.Logger) *AlertModel {
	return &AlertModel{
		db:     db,
		logger: logger.Named("db_alert"),
	}
}

// InsertAlert writes a new alert inside the caller's transaction.
func (r *AlertModel) InsertAlert(ctx context.Context, tx bun.Tx, alert *types.Alert) error {
	_, err := tx.NewInsert().
		Model(alert).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// GetAlert retrieves an alert by ID.
func (r *AlertModel) GetAlert(ctx context.Context, alertID uuid.UUID) (*types.Alert, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Alert, error) {
		var alert types.Alert

		err := r.db.NewSelect().
			Model(&alert).
			Where("id = ?", alertID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrAlertNotFound
			}

			return nil, fmt.Errorf("failed to get alert: %w", err)
		}

		return &alert, nil
	})
}

// GetAlertForUpdate loads an alert under FOR UPDATE inside the caller's
// transaction. Accept races resolve here: whichever transaction gets the
// lock first wins.
func (r *AlertModel) GetAlertForUpdate(ctx context.Context, tx bun.Tx, alertID uuid.UUID) (*types.Alert, error) {
	var alert types.Alert

	err := tx.NewSelect().
		Model(&alert).
		Where("id = ?", alertID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrAlertNotFound
		}

		return nil, fmt.Errorf("failed to lock alert: %w", err)
	}

	return &alert, nil
}

// GetOpenAlertForUser returns the user's unaccepted alert locked for
// update, or nil when none is open. A lock episode carries at most one.
func (r *AlertModel) GetOpenAlertForUser(ctx context.Context, tx bun.Tx, userID uuid.UUID) (*types.Alert, error) {
	var alerts []*types.Alert

	err := tx.NewSelect().
		Model(&alerts).
		Where("user_id = ?", userID).
		Where("status = ?", enum.AlertStatusPending).
		Order("created_at DESC").
		For("UPDATE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open alert: %w", err)
	}

	if len(alerts) == 0 {
		return nil, nil
	}

	return alerts[0], nil
}

// UpdateAccepted writes the accept fields inside the caller's transaction.
func (r *AlertModel) UpdateAccepted(ctx context.Context, tx bun.Tx, alert *types.Alert) error {
	_, err := tx.NewUpdate().
		Model(alert).
		Column("status", "accepted_by", "accepted_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update alert accept: %w", err)
	}

	return nil
}

// UpdateEscalation writes the widened scope and new deadline inside the
// caller's transaction. Clearing broadcast_at puts the alert back in the
// outbox so the wider scope actually gets paged.
func (r *AlertModel) UpdateEscalation(ctx context.Context, tx bun.Tx, alert *types.Alert) error {
	_, err := tx.NewUpdate().
		Model(alert).
		Column("status", "scope", "escalations", "deadline_at", "broadcast_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update alert escalation: %w", err)
	}

	return nil
}

// ListUnbroadcast retrieves alerts created but not yet fanned out to
// responders, oldest first.
func (r *AlertModel) ListUnbroadcast(ctx context.Context, limit int) ([]*types.Alert, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Alert, error) {
		var alerts []*types.Alert

		err := r.db.NewSelect().
			Model(&alerts).
			Where("status = ?", enum.AlertStatusPending).
			Where("broadcast_at IS NULL").
			Order("created_at ASC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list unbroadcast alerts: %w", err)
		}

		return alerts, nil
	})
}

// MarkBroadcast stamps the fan-out time on an alert. Broadcast is
// at-least-once; a crash between fan-out and this stamp just pages the
// same responders twice.
func (r *AlertModel) MarkBroadcast(ctx context.Context, alertID uuid.UUID, at time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewUpdate().
			Model((*types.Alert)(nil)).
			Set("broadcast_at = ?", at).
			Where("id = ?", alertID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark alert broadcast: %w", err)
		}

		return nil
	})
}

// ListOpenAlerts retrieves every alert still waiting on a responder. Used
// at startup to rebuild the deadline schedule after a restart.
func (r *AlertModel) ListOpenAlerts(ctx context.Context) ([]*types.Alert, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Alert, error) {
		var alerts []*types.Alert

		err := r.db.NewSelect().
			Model(&alerts).
			Where("status = ?", enum.AlertStatusPending).
			Order("deadline_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list open alerts: %w", err)
		}

		return alerts, nil
	})
}

// ListDueAlerts retrieves open alerts whose deadline has passed, oldest
// deadline first.
func (r *AlertModel) ListDueAlerts(ctx context.Context, now time.Time, limit int) ([]*types.Alert, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Alert, error) {
		var alerts []*types.Alert

		err := r.db.NewSelect().
			Model(&alerts).
			Where("status = ?", enum.AlertStatusPending).
			Where("deadline_at <= ?", now).
			Order("deadline_at ASC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list due alerts: %w", err)
		}

		return alerts, nil
	})
}

// GetAlertCounts returns how many alerts are open and how many have been
// marked unstaffed.
func (r *AlertModel) GetAlertCounts(ctx context.Context) (open, unstaffed int, err error) {
	type result struct {
		open      int
		unstaffed int
	}

	res, err := dbretry.Operation(ctx, func(ctx context.Context) (result, error) {
		var out result

		open, err := r.db.NewSelect().
			Model((*types.Alert)(nil)).
			Where("status = ?", enum.AlertStatusPending).
			Count(ctx)
		if err != nil {
			return out, fmt.Errorf("failed to count open alerts: %w", err)
		}
		out.open = open

		unstaffed, err := r.db.NewSelect().
			Model((*types.Alert)(nil)).
			Where("status = ?", enum.AlertStatusUnstaffed).
			Count(ctx)
		if err != nil {
			return out, fmt.Errorf("failed to count unstaffed alerts: %w", err)
		}
		out.unstaffed = unstaffed

		return out, nil
	})
	if err != nil {
		return 0, 0, err
	}

	return res.open, res.unstaffed, nil
}
