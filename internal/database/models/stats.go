package models

import (
	"context"
	"fmt"
	"time"

	"github.com/trygglabs/trygg/internal/database/dbretry"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// StatsModel handles database operations for statistics.
type StatsModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStats creates a new StatsModel.
func NewStats(db *bun.DB, logger *zap.Logger) *StatsModel {
	return &StatsModel{
		db:     db,
		logger: logger.Named("db_stats"),
	}
}

// SaveHourlyStats saves the current statistics snapshot.
func (r *StatsModel) SaveHourlyStats(ctx context.Context, stats *types.HourlyStats) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(stats).
			On("CONFLICT (timestamp) DO UPDATE").
			Set("locks_active = EXCLUDED.locks_active").
			Set("locks_opened = EXCLUDED.locks_opened").
			Set("incidents_critical = EXCLUDED.incidents_critical").
			Set("incidents_sensitive = EXCLUDED.incidents_sensitive").
			Set("incidents_resolved = EXCLUDED.incidents_resolved").
			Set("alerts_open = EXCLUDED.alerts_open").
			Set("alerts_unstaffed = EXCLUDED.alerts_unstaffed").
			Set("consents_pending = EXCLUDED.consents_pending").
			Set("consents_approved = EXCLUDED.consents_approved").
			Set("users_watchlisted = EXCLUDED.users_watchlisted").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save hourly stats: %w", err)
		}

		return nil
	})
}

// GetHourlyStats retrieves hourly statistics for the last 24 hours.
func (r *StatsModel) GetHourlyStats(ctx context.Context) ([]*types.HourlyStats, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.HourlyStats, error) {
		var stats []*types.HourlyStats

		now := time.Now().UTC()
		dayAgo := now.Add(-24 * time.Hour)

		err := r.db.NewSelect().
			Model(&stats).
			Where("timestamp >= ? AND timestamp <= ?", dayAgo, now).
			Order("timestamp ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get hourly stats: %w", err)
		}

		return stats, nil
	})
}

// PurgeOldStats removes statistics older than the cutoff date.
func (r *StatsModel) PurgeOldStats(ctx context.Context, cutoffDate time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.HourlyStats)(nil)).
			Where("timestamp < ?", cutoffDate).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge old stats: %w (cutoffDate=%s)", err, cutoffDate.Format(time.RFC3339))
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w (cutoffDate=%s)", err, cutoffDate.Format(time.RFC3339))
		}

		r.logger.Debug("Purged old stats",
			zap.Int64("rowsAffected", rowsAffected),
			zap.Time("cutoffDate", cutoffDate))

		return nil
	})
}
