package service

import (
	"context"
	"fmt"
	"time"

	"github.com/trygglabs/trygg/internal/database/models"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"go.uber.org/zap"
)

// StatsService handles statistics-related business logic.
type StatsService struct {
	model   *models.StatsModel
	consent *models.ConsentModel
	safety  *models.SafetyModel
	alerts  *models.AlertModel
	logger  *zap.Logger
}

// NewStats creates a new stats service.
func NewStats(
	model *models.StatsModel,
	consent *models.ConsentModel,
	safety *models.SafetyModel,
	alerts *models.AlertModel,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		model:   model,
		consent: consent,
		safety:  safety,
		alerts:  alerts,
		logger:  logger.Named("stats_service"),
	}
}

// GetCurrentStats retrieves the current statistics by counting directly from relevant tables.
func (s *StatsService) GetCurrentStats(ctx context.Context) (*types.HourlyStats, error) {
	var stats types.HourlyStats

	now := time.Now().UTC()
	stats.Timestamp = now.Truncate(time.Hour)

	// Get safety counts
	safetyCounts, err := s.safety.GetSafetyCounts(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get safety counts: %w", err)
	}

	stats.LocksActive = int64(safetyCounts.LocksActive)
	stats.UsersWatchlisted = int64(safetyCounts.Watchlisted)

	// Get incident counts for the current hour
	critical, sensitive, resolved, err := s.safety.CountIncidentsSince(ctx, stats.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents: %w", err)
	}

	stats.IncidentsCritical = int64(critical)
	stats.IncidentsSensitive = int64(sensitive)
	stats.IncidentsResolved = int64(resolved)

	locksOpened, err := s.safety.CountLocksOpenedSince(ctx, stats.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to count opened locks: %w", err)
	}

	stats.LocksOpened = int64(locksOpened)

	// Get alert counts
	open, unstaffed, err := s.alerts.GetAlertCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert counts: %w", err)
	}

	stats.AlertsOpen = int64(open)
	stats.AlertsUnstaffed = int64(unstaffed)

	// Get consent counts
	consentCounts, err := s.consent.CountByStatus(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get consent counts: %w", err)
	}

	stats.ConsentsPending = int64(consentCounts[enum.ConsentStatusPending])
	stats.ConsentsApproved = int64(consentCounts[enum.ConsentStatusApproved])

	return &stats, nil
}

// GetCurrentCounts retrieves all current safety-related counts.
func (s *StatsService) GetCurrentCounts(ctx context.Context) (*types.SafetyCounts, error) {
	now := time.Now().UTC()

	counts, err := s.safety.GetSafetyCounts(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get safety counts: %w", err)
	}

	open, unstaffed, err := s.alerts.GetAlertCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert counts: %w", err)
	}

	counts.AlertsOpen = open
	counts.AlertsUnstaffed = unstaffed

	consentCounts, err := s.consent.CountByStatus(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get consent counts: %w", err)
	}

	counts.ConsentsPending = consentCounts[enum.ConsentStatusPending]
	counts.ConsentsApproved = consentCounts[enum.ConsentStatusApproved]

	return counts, nil
}

// SaveHourlyStats saves the current statistics snapshot.
func (s *StatsService) SaveHourlyStats(ctx context.Context) error {
	// Get current stats
	stats, err := s.GetCurrentStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current stats: %w", err)
	}

	// Save stats to database
	if err := s.model.SaveHourlyStats(ctx, stats); err != nil {
		return fmt.Errorf("failed to save hourly stats: %w", err)
	}

	return nil
}

// GetHourlyStats retrieves the stats rows for the last 24 hours.
func (s *StatsService) GetHourlyStats(ctx context.Context) ([]*types.HourlyStats, error) {
	return s.model.GetHourlyStats(ctx)
}

// PurgeOldStats removes stats rows older than the cutoff date.
func (s *StatsService) PurgeOldStats(ctx context.Context, cutoffDate time.Time) error {
	return s.model.PurgeOldStats(ctx, cutoffDate)
}
