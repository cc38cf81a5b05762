package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/types/enum"
)

var (
	ErrAlertNotFound   = errors.New("alert not found")
	ErrAlreadyAccepted = errors.New("alert has already been accepted")
	ErrUnstaffedCrisis = errors.New("escalation ladder exhausted with no responder accept")
)

// DefaultInitialSLA is the accept window for a fresh alert when no
// configured value reaches the trigger path.
const DefaultInitialSLA = 5 * time.Minute

// Alert represents one broadcast escalation of an incident to on-duty
// responders. The row is the source of truth for accept state; the Redis
// deadline schedule only tells the monitor when to look. BroadcastAt is
// nil until the dispatcher has actually fanned the alert out, so creation
// inside a lock transaction doubles as the outbox entry.
type Alert struct {
	ID          uuid.UUID        `bun:",pk"       json:"id"`
	IncidentID  uuid.UUID        `bun:",notnull"  json:"incidentId"`
	UserID      uuid.UUID        `bun:",notnull"  json:"userId"`
	Status      enum.AlertStatus `bun:",notnull"  json:"status"`
	Scope       int              `bun:",notnull"  json:"scope"`
	Escalations int              `bun:",notnull"  json:"escalations"`
	DeadlineAt  time.Time        `bun:",notnull"  json:"deadlineAt"`
	BroadcastAt *time.Time       `bun:",nullzero" json:"broadcastAt"`
	AcceptedBy  string           `bun:",nullzero" json:"acceptedBy"`
	AcceptedAt  *time.Time       `bun:",nullzero" json:"acceptedAt"`
	CreatedAt   time.Time        `bun:",notnull"  json:"createdAt"`
}

// Open reports whether the alert still wants a responder.
func (a *Alert) Open() bool {
	return a.Status != enum.AlertStatusAccepted
}

// Overdue reports whether the current SLA window has lapsed.
func (a *Alert) Overdue(now time.Time) bool {
	return a.Status == enum.AlertStatusPending && !now.Before(a.DeadlineAt)
}
