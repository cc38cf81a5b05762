package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already registered")
	ErrMissingExternalRef    = errors.New("external reference is required")
	ErrInvalidBirthDate      = errors.New("invalid birth date")
	ErrUnknownLegacyCategory = errors.New("unknown legacy age category")
	ErrNoAgeInput            = errors.New("user has neither birth date nor legacy category")
)

// Legacy age category strings accepted from accounts that predate birth
// date collection. Never used when a birth date is on file.
const (
	LegacyCategoryJunior = "13-15"
	LegacyCategorySenior = "16-17"
	LegacyCategoryAdult  = "18+"
)

// User represents a platform account as this system sees it: an identity
// plus the age input that tiers are derived from. The tier itself is never
// stored; it is recomputed from BirthDate (or LegacyCategory) on every
// tier-sensitive read.
type User struct {
	ID             uuid.UUID  `bun:",pk"              json:"id"`
	ExternalRef    string     `bun:",notnull,unique"  json:"externalRef"`
	BirthDate      *time.Time `bun:",nullzero"        json:"birthDate"`
	LegacyCategory string     `bun:",nullzero"        json:"legacyCategory"`
	CreatedAt      time.Time  `bun:",notnull"         json:"createdAt"`
	UpdatedAt      time.Time  `bun:",notnull"         json:"updatedAt"`
}

// HasBirthDate reports whether the account carries a usable birth date.
func (u *User) HasBirthDate() bool {
	return u.BirthDate != nil && !u.BirthDate.IsZero()
}
