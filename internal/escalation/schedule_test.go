package escalation_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/escalation"
	"go.uber.org/zap"
)

func newTestSchedule(t *testing.T) (*escalation.Schedule, rueidis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return escalation.NewSchedule(client, zap.NewNop()), client
}

func TestScheduleTrackAndDue(t *testing.T) {
	t.Parallel()

	schedule, _ := newTestSchedule(t)
	ctx := context.Background()
	now := time.Now().UTC()

	overdue := uuid.New()
	justDue := uuid.New()
	future := uuid.New()

	require.NoError(t, schedule.Track(ctx, overdue, now.Add(-10*time.Minute)))
	require.NoError(t, schedule.Track(ctx, justDue, now.Add(-1*time.Minute)))
	require.NoError(t, schedule.Track(ctx, future, now.Add(10*time.Minute)))

	due, err := schedule.Due(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{overdue, justDue}, due)

	size, err := schedule.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
}

func TestScheduleTrackMovesDeadline(t *testing.T) {
	t.Parallel()

	schedule, _ := newTestSchedule(t)
	ctx := context.Background()
	now := time.Now().UTC()
	alertID := uuid.New()

	require.NoError(t, schedule.Track(ctx, alertID, now.Add(-time.Minute)))
	require.NoError(t, schedule.Track(ctx, alertID, now.Add(5*time.Minute)))

	due, err := schedule.Due(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	size, err := schedule.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestScheduleDueLimit(t *testing.T) {
	t.Parallel()

	schedule, _ := newTestSchedule(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := range 5 {
		require.NoError(t, schedule.Track(ctx, uuid.New(), now.Add(-time.Duration(i+1)*time.Minute)))
	}

	due, err := schedule.Due(ctx, now, 3)
	require.NoError(t, err)
	assert.Len(t, due, 3)
}

func TestScheduleDueDropsMalformedMembers(t *testing.T) {
	t.Parallel()

	schedule, client := newTestSchedule(t)
	ctx := context.Background()
	now := time.Now().UTC()
	alertID := uuid.New()

	require.NoError(t, schedule.Track(ctx, alertID, now.Add(-time.Minute)))
	require.NoError(t, client.Do(ctx,
		client.B().Zadd().Key("escalation:deadlines").ScoreMember().
			ScoreMember(float64(now.Add(-time.Hour).Unix()), "not-an-alert").Build(),
	).Error())

	due, err := schedule.Due(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alertID}, due)

	// The junk member is gone, not just skipped.
	size, err := schedule.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestScheduleForget(t *testing.T) {
	t.Parallel()

	schedule, _ := newTestSchedule(t)
	ctx := context.Background()
	alertID := uuid.New()

	require.NoError(t, schedule.Track(ctx, alertID, time.Now().UTC().Add(-time.Minute)))

	attempts, err := schedule.RecordAttempt(ctx, alertID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), attempts)

	require.NoError(t, schedule.Forget(ctx, alertID))

	due, err := schedule.Due(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	// Forgetting cleared the counter as well.
	attempts, err = schedule.RecordAttempt(ctx, alertID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), attempts)
}

func TestScheduleRecordAttempt(t *testing.T) {
	t.Parallel()

	schedule, _ := newTestSchedule(t)
	ctx := context.Background()
	alertID := uuid.New()

	for want := int64(1); want <= 3; want++ {
		attempts, err := schedule.RecordAttempt(ctx, alertID)
		require.NoError(t, err)
		assert.Equal(t, want, attempts)
	}
}

func TestScheduleClear(t *testing.T) {
	t.Parallel()

	schedule, _ := newTestSchedule(t)
	ctx := context.Background()

	require.NoError(t, schedule.Track(ctx, uuid.New(), time.Now().UTC()))
	require.NoError(t, schedule.Track(ctx, uuid.New(), time.Now().UTC()))
	require.NoError(t, schedule.Clear(ctx))

	size, err := schedule.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}
