package types

import (
	"errors"
	"time"

	"github.com/trygglabs/trygg/internal/database/types/enum"
)

var ErrNoAuditEntries = errors.New("no audit entries found")

// AuditEntry is the append-only record of one state transition. Entries
// are written inside the transaction of the operation they describe, so a
// caller never sees success before the entry is durable. No update or
// delete path exists.
type AuditEntry struct {
	ID         int64           `bun:",pk,autoincrement" json:"id"`
	EntityKind enum.EntityKind `bun:",notnull"          json:"entityKind"`
	EntityID   string          `bun:",notnull"          json:"entityId"`
	FromState  string          `bun:",notnull"          json:"fromState"`
	ToState    string          `bun:",notnull"          json:"toState"`
	ActorKind  enum.ActorKind  `bun:",notnull"          json:"actorKind"`
	ActorID    string          `bun:",nullzero"         json:"actorId"`
	Reason     enum.ReasonCode `bun:",notnull"          json:"reason"`
	Detail     string          `bun:",nullzero"         json:"detail"`
	CreatedAt  time.Time       `bun:",notnull"          json:"createdAt"`
}

// AuditFilter narrows audit reads for the reporting consumer. Zero values
// mean "any".
type AuditFilter struct {
	EntityKind *enum.EntityKind
	EntityID   string
	ActorID    string
	Reason     *enum.ReasonCode
	StartTime  time.Time
	EndTime    time.Time
}

// AuditCursor marks a position in the (created_at, id) ordering for stable
// pagination.
type AuditCursor struct {
	Timestamp time.Time `json:"timestamp"`
	ID        int64     `json:"id"`
}
