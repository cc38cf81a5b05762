package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/types/enum"
)

var (
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrAlreadyResolved    = errors.New("incident has already been resolved")
	ErrNotEscalated       = errors.New("safety state is not escalated")
	ErrMissingContentRef  = errors.New("content reference is required")
	ErrMissingResponderID = errors.New("responder id is required")
	ErrInvalidSeverity    = errors.New("severity must be sensitive or critical")
)

// WatchlistWindow is how long a resolved user stays flagged for passive
// check-in before lapsing back to normal.
const WatchlistWindow = 7 * 24 * time.Hour

// SafetyState represents a user's position in the crisis state machine.
// One row per user, created lazily on the first trigger; all transitions
// run under a row lock so concurrent triggers serialize.
type SafetyState struct {
	UserID            uuid.UUID         `bun:",pk"       json:"userId"`
	Status            enum.SafetyStatus `bun:",notnull"  json:"status"`
	TriggerIncidentID *uuid.UUID        `bun:",nullzero" json:"triggerIncidentId"`
	LockedAt          *time.Time        `bun:",nullzero" json:"lockedAt"`
	ResponderID       string            `bun:",nullzero" json:"responderId"`
	ChannelID         string            `bun:",nullzero" json:"channelId"`
	WatchlistUntil    *time.Time        `bun:",nullzero" json:"watchlistUntil"`
	UpdatedAt         time.Time         `bun:",notnull"  json:"updatedAt"`
}

// WatchlistLapsed reports whether a Watchlisted state has outlived its
// window and should read as Normal. Evaluated lazily; no sweeper exists.
func (s *SafetyState) WatchlistLapsed(now time.Time) bool {
	return s.Status == enum.SafetyStatusWatchlisted &&
		s.WatchlistUntil != nil && !now.Before(*s.WatchlistUntil)
}

// EffectiveStatus returns the status a reader should act on, folding a
// lapsed watchlist into Normal without requiring the row to be rewritten
// first.
func (s *SafetyState) EffectiveStatus(now time.Time) enum.SafetyStatus {
	if s.WatchlistLapsed(now) {
		return enum.SafetyStatusNormal
	}

	return s.Status
}

// Incident represents one triggering detection or report. Immutable once
// written except for the resolution fields, which are set exactly once.
type Incident struct {
	ID         uuid.UUID           `bun:",pk"       json:"id"`
	UserID     uuid.UUID           `bun:",notnull"  json:"userId"`
	ContentRef string              `bun:",notnull"  json:"contentRef"`
	Severity   enum.Severity       `bun:",notnull"  json:"severity"`
	Category   string              `bun:",notnull"  json:"category"`
	Source     enum.IncidentSource `bun:",notnull"  json:"source"`
	ReportedBy string              `bun:",nullzero" json:"reportedBy"`
	CreatedAt  time.Time           `bun:",notnull"  json:"createdAt"`
	Outcome    *enum.Disposition   `bun:",nullzero" json:"outcome"`
	ResolvedBy string              `bun:",nullzero" json:"resolvedBy"`
	ResolvedAt *time.Time          `bun:",nullzero" json:"resolvedAt"`
}

// Resolved reports whether a responder has closed this incident.
func (i *Incident) Resolved() bool {
	return i.ResolvedAt != nil
}

// ContentRestriction represents a piece of content hidden from public
// visibility as a lock entry effect. Rows persist after resolution as part
// of the incident record, except when the case closes as a false alarm,
// which lifts them.
type ContentRestriction struct {
	ContentRef string    `bun:",pk"      json:"contentRef"`
	UserID     uuid.UUID `bun:",notnull" json:"userId"`
	IncidentID uuid.UUID `bun:",notnull" json:"incidentId"`
	HiddenAt   time.Time `bun:",notnull" json:"hiddenAt"`
}
