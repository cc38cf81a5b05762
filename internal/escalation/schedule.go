// Package escalation drives the alert SLA ladder: fanning fresh alerts
// out to responder webhooks, watching accept deadlines in Redis, and
// widening the broadcast scope when nobody answers in time. The database
// alert row stays the source of truth; Redis only tells the monitor when
// to look.
package escalation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// deadlinesKey is the sorted set of open alerts keyed by accept
	// deadline. Member is the alert ID, score the unix deadline.
	deadlinesKey = "escalation:deadlines"

	// attemptsKeyPrefix namespaces per-alert broadcast attempt counters.
	// Keys are formatted as "escalation:attempts:{alertID}".
	attemptsKeyPrefix = "escalation:attempts:"

	// attemptsExpiry bounds how long an attempt counter can outlive its
	// alert if cleanup is missed.
	attemptsExpiry = 7 * 24 * time.Hour
)

// Schedule tracks alert accept deadlines in a Redis sorted set so the
// monitor wakes up for due alerts instead of polling every row.
type Schedule struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewSchedule creates a deadline schedule on the given Redis client.
func NewSchedule(client rueidis.Client, logger *zap.Logger) *Schedule {
	return &Schedule{
		client: client,
		logger: logger.Named("escalation_schedule"),
	}
}

// Track records or moves an alert's accept deadline.
func (s *Schedule) Track(ctx context.Context, alertID uuid.UUID, deadline time.Time) error {
	err := s.client.Do(ctx,
		s.client.B().Zadd().Key(deadlinesKey).ScoreMember().
			ScoreMember(float64(deadline.Unix()), alertID.String()).Build(),
	).Error()
	if err != nil {
		return fmt.Errorf("failed to track alert deadline: %w", err)
	}

	return nil
}

// Due returns up to limit alerts whose deadline has passed, earliest
// first. Members that fail to parse as alert IDs are dropped from the
// set so one bad write cannot wedge the scan.
func (s *Schedule) Due(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	members, err := s.client.Do(ctx,
		s.client.B().Zrangebyscore().Key(deadlinesKey).
			Min("-inf").Max(strconv.FormatInt(now.Unix(), 10)).
			Limit(0, int64(limit)).Build(),
	).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to scan due deadlines: %w", err)
	}

	due := make([]uuid.UUID, 0, len(members))

	for _, member := range members {
		alertID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn("Dropping malformed schedule member",
				zap.String("member", member),
				zap.Error(err))

			if err := s.client.Do(ctx,
				s.client.B().Zrem().Key(deadlinesKey).Member(member).Build(),
			).Error(); err != nil {
				s.logger.Error("Failed to drop malformed schedule member", zap.Error(err))
			}

			continue
		}

		due = append(due, alertID)
	}

	return due, nil
}

// Forget removes an alert from the schedule along with its attempt
// counter. Called when the alert no longer wants a responder.
func (s *Schedule) Forget(ctx context.Context, alertID uuid.UUID) error {
	err := s.client.Do(ctx,
		s.client.B().Zrem().Key(deadlinesKey).Member(alertID.String()).Build(),
	).Error()
	if err != nil {
		return fmt.Errorf("failed to remove alert from schedule: %w", err)
	}

	err = s.client.Do(ctx,
		s.client.B().Del().Key(attemptsKeyPrefix+alertID.String()).Build(),
	).Error()
	if err != nil {
		return fmt.Errorf("failed to clear attempt counter: %w", err)
	}

	return nil
}

// RecordAttempt bumps the broadcast attempt counter for an alert and
// returns the new total.
func (s *Schedule) RecordAttempt(ctx context.Context, alertID uuid.UUID) (int64, error) {
	key := attemptsKeyPrefix + alertID.String()

	attempts, err := s.client.Do(ctx, s.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to record broadcast attempt: %w", err)
	}

	err = s.client.Do(ctx,
		s.client.B().Expire().Key(key).Seconds(int64(attemptsExpiry.Seconds())).Build(),
	).Error()
	if err != nil {
		return attempts, fmt.Errorf("failed to expire attempt counter: %w", err)
	}

	return attempts, nil
}

// Size returns how many alerts are currently tracked.
func (s *Schedule) Size(ctx context.Context) (int64, error) {
	count, err := s.client.Do(ctx, s.client.B().Zcard().Key(deadlinesKey).Build()).ToInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to count tracked deadlines: %w", err)
	}

	return count, nil
}

// Clear drops the whole schedule. Used before a reconcile rebuilds it
// from the database.
func (s *Schedule) Clear(ctx context.Context) error {
	err := s.client.Do(ctx, s.client.B().Del().Key(deadlinesKey).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}

	return nil
}
