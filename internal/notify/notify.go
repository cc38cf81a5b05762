// Package notify delivers crisis alert broadcasts and operator pages to
// Discord webhooks. Delivery is best-effort: the state transition that
// triggered a send is already committed, so a webhook failure is logged
// and reported to the caller but never rolls anything back.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"
	"github.com/sourcegraph/conc/pool"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
)

// ErrNoOpsWebhook is returned when an operator page is needed but no ops
// webhook is configured.
var ErrNoOpsWebhook = errors.New("no ops webhook configured")

const (
	alertEmbedColor = 0xE74C3C
	opsEmbedColor   = 0xE67E22

	defaultSendTimeout = 10 * time.Second
)

// Notifier sends embeds to Discord webhooks, caching one client per URL.
type Notifier struct {
	opsWebhookURL string
	timeout       time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	clients map[string]webhook.Client
}

// New creates a notifier from the notification configuration.
func New(cfg *config.Notify, logger *zap.Logger) *Notifier {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Notifier{
		opsWebhookURL: cfg.OpsWebhookURL,
		timeout:       timeout,
		logger:        logger.Named("notify"),
		clients:       make(map[string]webhook.Client),
	}
}

// BroadcastAlert fans one alert out to every webhook in the responder
// scope in parallel and returns how many deliveries succeeded. Failures
// are logged and skipped so one dead or slow webhook cannot starve the
// rest of the pool.
func (n *Notifier) BroadcastAlert(
	ctx context.Context, webhooks []string, scopeName string, alert *types.Alert, incident *types.Incident,
) int {
	embed := buildAlertEmbed(scopeName, alert, incident)

	var (
		p         = pool.New()
		delivered atomic.Int64
	)

	for _, url := range webhooks {
		p.Go(func() {
			if err := n.sendEmbed(ctx, url, embed); err != nil {
				n.logger.Warn("Failed to deliver alert to responder webhook",
					zap.String("alertID", alert.ID.String()),
					zap.String("scope", scopeName),
					zap.Error(err))

				return
			}

			delivered.Add(1)
		})
	}

	p.Wait()

	return int(delivered.Load())
}

// PageUnstaffed raises an exhausted escalation ladder to operations.
func (n *Notifier) PageUnstaffed(ctx context.Context, alert *types.Alert) error {
	if n.opsWebhookURL == "" {
		return ErrNoOpsWebhook
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Unstaffed crisis").
		SetDescription("The escalation ladder was exhausted without a responder accepting this alert. "+
			"Manual intervention is required now.").
		AddField("Alert", alert.ID.String(), true).
		AddField("User", alert.UserID.String(), true).
		AddField("Escalations", strconv.Itoa(alert.Escalations), true).
		AddField("Opened", fmt.Sprintf("<t:%d:R>", alert.CreatedAt.Unix()), true).
		SetColor(alertEmbedColor).
		SetTimestamp(time.Now().UTC()).
		Build()

	return n.sendEmbed(ctx, n.opsWebhookURL, embed)
}

// PageFault reports a component fault to operations.
func (n *Notifier) PageFault(ctx context.Context, component string, faultErr error) error {
	if n.opsWebhookURL == "" {
		return ErrNoOpsWebhook
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Component fault").
		SetDescription("A safety component is failing and may be delaying crisis handling.").
		AddField("Component", component, true).
		AddField("Error", faultErr.Error(), false).
		SetColor(opsEmbedColor).
		SetTimestamp(time.Now().UTC()).
		Build()

	return n.sendEmbed(ctx, n.opsWebhookURL, embed)
}

// Close releases all cached webhook clients.
func (n *Notifier) Close(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for url, client := range n.clients {
		client.Close(ctx)
		delete(n.clients, url)
	}
}

// sendEmbed delivers one embed to one webhook within the send timeout.
func (n *Notifier) sendEmbed(ctx context.Context, url string, embed discord.Embed) error {
	client, err := n.clientFor(url)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if _, err := client.CreateEmbeds([]discord.Embed{embed}, rest.WithCtx(sendCtx)); err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}

	return nil
}

// clientFor returns the cached client for a webhook URL, creating one on
// first use.
func (n *Notifier) clientFor(url string) (webhook.Client, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if client, ok := n.clients[url]; ok {
		return client, nil
	}

	client, err := webhook.NewWithURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}

	n.clients[url] = client

	return client, nil
}

// buildAlertEmbed renders the responder-facing alert message. The embed
// deliberately carries identifiers and timing only; the content that
// triggered the lock stays in the responder console.
func buildAlertEmbed(scopeName string, alert *types.Alert, incident *types.Incident) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle("Crisis alert").
		SetDescription("An account is locked behind a crisis screen and needs a responder.").
		AddField("Alert", alert.ID.String(), true).
		AddField("User", alert.UserID.String(), true).
		AddField("Scope", fmt.Sprintf("%s (level %d)", scopeName, alert.Scope), true)

	if incident != nil {
		embed.AddField("Category", incident.Category, true).
			AddField("Severity", incident.Severity.String(), true).
			AddField("Source", incident.Source.String(), true)
	}

	if alert.Escalations > 0 {
		embed.AddField("Escalations", strconv.Itoa(alert.Escalations), true)
	}

	embed.AddField("Accept by", fmt.Sprintf("<t:%d:R>", alert.DeadlineAt.Unix()), true).
		SetColor(alertEmbedColor).
		SetTimestamp(alert.CreatedAt)

	return embed.Build()
}
