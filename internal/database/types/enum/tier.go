package enum

// Tier represents the access level derived from a user's age.
//
//go:generate go tool enumer -type=Tier -trimprefix=Tier
type Tier int

const (
	// TierIneligible indicates a user below the minimum platform age.
	TierIneligible Tier = iota
	// TierMinorJunior indicates a user aged 13 through 15 who needs guardian consent.
	TierMinorJunior
	// TierMinorSenior indicates a user aged 16 through 17 who needs guardian consent.
	TierMinorSenior
	// TierAdult indicates a user aged 18 or older with full access.
	TierAdult
)

// RequiresConsent reports whether the tier gates feature access behind
// an approved guardian consent.
func (i Tier) RequiresConsent() bool {
	return i == TierMinorJunior || i == TierMinorSenior
}
