package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/notify"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
)

func testAlert() *types.Alert {
	now := time.Now().UTC()

	return &types.Alert{
		ID:         uuid.New(),
		IncidentID: uuid.New(),
		UserID:     uuid.New(),
		Status:     enum.AlertStatusPending,
		Scope:      1,
		DeadlineAt: now.Add(5 * time.Minute),
		CreatedAt:  now,
	}
}

func TestBroadcastAlertSkipsMalformedWebhooks(t *testing.T) {
	t.Parallel()

	n := notify.New(&config.Notify{}, zap.NewNop())
	defer n.Close(context.Background())

	delivered := n.BroadcastAlert(
		context.Background(),
		[]string{"not-a-webhook", "https://example.com/hook"},
		"on_duty",
		testAlert(),
		nil,
	)
	assert.Zero(t, delivered)
}

func TestBroadcastAlertEmptyScope(t *testing.T) {
	t.Parallel()

	n := notify.New(&config.Notify{}, zap.NewNop())
	defer n.Close(context.Background())

	delivered := n.BroadcastAlert(context.Background(), nil, "on_duty", testAlert(), nil)
	assert.Zero(t, delivered)
}

func TestPageUnstaffedWithoutOpsWebhook(t *testing.T) {
	t.Parallel()

	n := notify.New(&config.Notify{}, zap.NewNop())
	defer n.Close(context.Background())

	err := n.PageUnstaffed(context.Background(), testAlert())
	require.ErrorIs(t, err, notify.ErrNoOpsWebhook)
}

func TestPageFaultWithoutOpsWebhook(t *testing.T) {
	t.Parallel()

	n := notify.New(&config.Notify{}, zap.NewNop())
	defer n.Close(context.Background())

	err := n.PageFault(context.Background(), "escalation_monitor", errors.New("redis unreachable"))
	require.ErrorIs(t, err, notify.ErrNoOpsWebhook)
}
