package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/types/enum"
)

var (
	ErrConsentNotFound        = errors.New("consent record not found")
	ErrDuplicateActiveRequest = errors.New("an active consent request already exists for this user")
	ErrAlreadyDecided         = errors.New("consent request has already been decided")
	ErrConsentWindowClosed    = errors.New("consent request window has closed")
	ErrMissingGuardianContact = errors.New("guardian contact is required")
	ErrConsentNotRequired     = errors.New("user tier does not require guardian consent")
)

const (
	// ConsentPendingWindow is how long a guardian has to answer a request
	// before it lapses and a new request may supersede it.
	ConsentPendingWindow = 7 * 24 * time.Hour

	// ConsentValidity is how long an approval gates the user as consented
	// before renewal is required.
	ConsentValidity = 365 * 24 * time.Hour
)

// ConsentRecord represents one guardian consent request and its outcome.
// A user accumulates records over time but holds at most one that is
// Pending-and-in-window or Approved-and-unexpired.
type ConsentRecord struct {
	ID              uuid.UUID          `bun:",pk"       json:"id"`
	UserID          uuid.UUID          `bun:",notnull"  json:"userId"`
	GuardianContact string             `bun:",notnull"  json:"guardianContact"`
	Method          enum.ConsentMethod `bun:",notnull"  json:"method"`
	Status          enum.ConsentStatus `bun:",notnull"  json:"status"`
	CreatedAt       time.Time          `bun:",notnull"  json:"createdAt"`
	DecidedAt       *time.Time         `bun:",nullzero" json:"decidedAt"`
	ExpiresAt       *time.Time         `bun:",nullzero" json:"expiresAt"`
}

// PendingWindowClosed reports whether a Pending record has outlived the
// guardian response window. Such records behave as Expired on every read
// even before the row is flipped.
func (c *ConsentRecord) PendingWindowClosed(now time.Time) bool {
	return c.Status == enum.ConsentStatusPending && now.After(c.CreatedAt.Add(ConsentPendingWindow))
}

// ApprovedActive reports whether the record currently satisfies gating:
// Approved with an expiry strictly in the future.
func (c *ConsentRecord) ApprovedActive(now time.Time) bool {
	return c.Status == enum.ConsentStatusApproved && c.ExpiresAt != nil && c.ExpiresAt.After(now)
}
