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

// SafetyModel handles database operations for safety states, incidents and
// content restrictions.
type SafetyModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSafety creates a new safety model.
func NewSafety(db *bun.DB, logger *zap.Logger) *SafetyModel {
	return &SafetyModel{
		db:     db,
		logger: logger.Named("db_safety"),
	}
}

// GetState retrieves a user's safety state, or nil when the user has never
// been locked. Callers treat a missing row as Normal.
func (r *SafetyModel) GetState(ctx context.Context, userID uuid.UUID) (*types.SafetyState, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.SafetyState, error) {
		var state types.SafetyState

		err := r.db.NewSelect().
			Model(&state).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("failed to get safety state: %w", err)
		}

		return &state, nil
	})
}

// GetStateForUpdate loads a user's safety state under FOR UPDATE inside the
// caller's transaction, or nil when no row exists yet.
func (r *SafetyModel) GetStateForUpdate(ctx context.Context, tx bun.Tx, userID uuid.UUID) (*types.SafetyState, error) {
	var state types.SafetyState

	err := tx.NewSelect().
		Model(&state).
		Where("user_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to lock safety state: %w", err)
	}

	return &state, nil
}

// UpsertState writes a user's safety state inside the caller's transaction,
// creating the row on first lock.
func (r *SafetyModel) UpsertState(ctx context.Context, tx bun.Tx, state *types.SafetyState) error {
	_, err := tx.NewInsert().
		Model(state).
		On("CONFLICT (user_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("trigger_incident_id = EXCLUDED.trigger_incident_id").
		Set("locked_at = EXCLUDED.locked_at").
		Set("responder_id = EXCLUDED.responder_id").
		Set("channel_id = EXCLUDED.channel_id").
		Set("watchlist_until = EXCLUDED.watchlist_until").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert safety state: %w", err)
	}

	return nil
}

// InsertIncident writes a new incident inside the caller's transaction.
func (r *SafetyModel) InsertIncident(ctx context.Context, tx bun.Tx, incident *types.Incident) error {
	_, err := tx.NewInsert().
		Model(incident).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}

	return nil
}

// GetIncident retrieves an incident by ID.
func (r *SafetyModel) GetIncident(ctx context.Context, incidentID uuid.UUID) (*types.Incident, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Incident, error) {
		var incident types.Incident

		err := r.db.NewSelect().
			Model(&incident).
			Where("id = ?", incidentID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrIncidentNotFound
			}

			return nil, fmt.Errorf("failed to get incident: %w", err)
		}

		return &incident, nil
	})
}

// ListIncidentsByUser retrieves a user's incidents, newest first.
func (r *SafetyModel) ListIncidentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Incident, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Incident, error) {
		var incidents []*types.Incident

		query := r.db.NewSelect().
			Model(&incidents).
			Where("user_id = ?", userID).
			Order("created_at DESC")

		if limit > 0 {
			query = query.Limit(limit)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to list incidents: %w", err)
		}

		return incidents, nil
	})
}

// ListIncidentsBetween retrieves all incidents created inside the window,
// oldest first. A zero window returns everything.
func (r *SafetyModel) ListIncidentsBetween(ctx context.Context, start, end time.Time) ([]*types.Incident, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Incident, error) {
		var incidents []*types.Incident

		query := r.db.NewSelect().
			Model(&incidents).
			Order("created_at ASC", "id ASC")

		if !start.IsZero() && !end.IsZero() {
			query = query.Where("created_at BETWEEN ? AND ?", start, end)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to list incidents: %w", err)
		}

		return incidents, nil
	})
}

// ResolveOpenIncidents stamps the resolution fields on all of a user's open
// incidents inside the caller's transaction and returns how many closed.
// One lock episode can accumulate several incidents; resolution closes them
// as a set.
func (r *SafetyModel) ResolveOpenIncidents(
	ctx context.Context, tx bun.Tx, userID uuid.UUID,
	outcome enum.Disposition, resolvedBy string, resolvedAt time.Time,
) (int64, error) {
	result, err := tx.NewUpdate().
		Model((*types.Incident)(nil)).
		Set("outcome = ?", outcome).
		Set("resolved_by = ?", resolvedBy).
		Set("resolved_at = ?", resolvedAt).
		Where("user_id = ?", userID).
		Where("outcome IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve open incidents: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// InsertRestrictions hides content refs inside the caller's transaction.
// Re-locking a user replays the same refs, so conflicts are ignored.
func (r *SafetyModel) InsertRestrictions(ctx context.Context, tx bun.Tx, restrictions []*types.ContentRestriction) error {
	if len(restrictions) == 0 {
		return nil
	}

	_, err := tx.NewInsert().
		Model(&restrictions).
		On("CONFLICT (content_ref) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert content restrictions: %w", err)
	}

	return nil
}

// ListRestrictionsByUser retrieves the content currently hidden for a user.
func (r *SafetyModel) ListRestrictionsByUser(ctx context.Context, userID uuid.UUID) ([]*types.ContentRestriction, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ContentRestriction, error) {
		var restrictions []*types.ContentRestriction

		err := r.db.NewSelect().
			Model(&restrictions).
			Where("user_id = ?", userID).
			Order("hidden_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list content restrictions: %w", err)
		}

		return restrictions, nil
	})
}

// DeleteRestrictionsByUser lifts all content restrictions for a user inside
// the caller's transaction. Used when a case closes as a false alarm.
func (r *SafetyModel) DeleteRestrictionsByUser(ctx context.Context, tx bun.Tx, userID uuid.UUID) (int64, error) {
	result, err := tx.NewDelete().
		Model((*types.ContentRestriction)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete content restrictions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// GetSafetyCounts gathers the point-in-time numbers for a stats snapshot.
func (r *SafetyModel) GetSafetyCounts(ctx context.Context, now time.Time) (*types.SafetyCounts, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.SafetyCounts, error) {
		var counts types.SafetyCounts

		locksActive, err := r.db.NewSelect().
			Model((*types.SafetyState)(nil)).
			Where("status IN (?, ?)", enum.SafetyStatusLocked, enum.SafetyStatusEscalated).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count active locks: %w", err)
		}
		counts.LocksActive = locksActive

		watchlisted, err := r.db.NewSelect().
			Model((*types.SafetyState)(nil)).
			Where("status = ?", enum.SafetyStatusWatchlisted).
			Where("watchlist_until > ?", now).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count watchlisted users: %w", err)
		}
		counts.Watchlisted = watchlisted

		return &counts, nil
	})
}

// CountIncidentsSince returns per-severity incident counts and the number
// of incidents resolved since the given time.
func (r *SafetyModel) CountIncidentsSince(ctx context.Context, since time.Time) (critical, sensitive, resolved int, err error) {
	type result struct {
		critical  int
		sensitive int
		resolved  int
	}

	res, err := dbretry.Operation(ctx, func(ctx context.Context) (result, error) {
		var out result

		critical, err := r.db.NewSelect().
			Model((*types.Incident)(nil)).
			Where("severity = ?", enum.SeverityCritical).
			Where("created_at >= ?", since).
			Count(ctx)
		if err != nil {
			return out, fmt.Errorf("failed to count critical incidents: %w", err)
		}
		out.critical = critical

		sensitive, err := r.db.NewSelect().
			Model((*types.Incident)(nil)).
			Where("severity = ?", enum.SeveritySensitive).
			Where("created_at >= ?", since).
			Count(ctx)
		if err != nil {
			return out, fmt.Errorf("failed to count sensitive incidents: %w", err)
		}
		out.sensitive = sensitive

		resolved, err := r.db.NewSelect().
			Model((*types.Incident)(nil)).
			Where("resolved_at >= ?", since).
			Count(ctx)
		if err != nil {
			return out, fmt.Errorf("failed to count resolved incidents: %w", err)
		}
		out.resolved = resolved

		return out, nil
	})
	if err != nil {
		return 0, 0, 0, err
	}

	return res.critical, res.sensitive, res.resolved, nil
}

// CountLocksOpenedSince returns how many lock episodes started since the
// given time, counted from audit entries so re-locks are included.
func (r *SafetyModel) CountLocksOpenedSince(ctx context.Context, since time.Time) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		count, err := r.db.NewSelect().
			Model((*types.AuditEntry)(nil)).
			Where("entity_kind = ?", enum.EntityKindSafety).
			Where("to_state = ?", enum.SafetyStatusLocked.String()).
			Where("created_at >= ?", since).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count opened locks: %w", err)
		}

		return count, nil
	})
}
