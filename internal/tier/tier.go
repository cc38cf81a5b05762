// Package tier derives access tiers from age input. Tiers are never
// stored: every tier-sensitive operation recomputes from the birth date on
// file so an account crossing a band boundary changes tier on the day,
// with no refresh job and no client-supplied value trusted.
package tier

import (
	"time"

	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
)

// Age band boundaries. Lower bounds are inclusive: a user is in the band
// starting on the relevant birthday.
const (
	minPlatformAge = 13
	seniorMinAge   = 16
	adultMinAge    = 18

	// maxPlausibleAge rejects birth dates that can only be entry mistakes.
	maxPlausibleAge = 130
)

// Resolve computes the access tier for a birth date as of now. Age counts
// whole calendar years by month/day comparison, so the tier steps up on
// the birthday itself, never the day before. A zero, future or implausibly
// old birth date returns types.ErrInvalidBirthDate; eligibility is never
// used to mask bad input.
func Resolve(birthDate, now time.Time) (enum.Tier, error) {
	if birthDate.IsZero() {
		return enum.TierIneligible, types.ErrInvalidBirthDate
	}

	birth := birthDate.UTC()
	today := now.UTC()

	if birth.After(today) {
		return enum.TierIneligible, types.ErrInvalidBirthDate
	}

	age := wholeYears(birth, today)
	if age > maxPlausibleAge {
		return enum.TierIneligible, types.ErrInvalidBirthDate
	}

	switch {
	case age < minPlatformAge:
		return enum.TierIneligible, nil
	case age < seniorMinAge:
		return enum.TierMinorJunior, nil
	case age < adultMinAge:
		return enum.TierMinorSenior, nil
	default:
		return enum.TierAdult, nil
	}
}

// ParseLegacyCategory maps one of the fixed age band strings carried by
// accounts that predate birth date collection. The strings are lookup keys
// only; no new tier computation accepts them.
func ParseLegacyCategory(category string) (enum.Tier, error) {
	switch category {
	case types.LegacyCategoryJunior:
		return enum.TierMinorJunior, nil
	case types.LegacyCategorySenior:
		return enum.TierMinorSenior, nil
	case types.LegacyCategoryAdult:
		return enum.TierAdult, nil
	default:
		return enum.TierIneligible, types.ErrUnknownLegacyCategory
	}
}

// ResolveUser computes the tier for an account. A verified birth date
// always wins; the stored legacy category only covers accounts that never
// supplied one. An account with neither returns types.ErrNoAgeInput.
func ResolveUser(user *types.User, now time.Time) (enum.Tier, error) {
	if user.HasBirthDate() {
		return Resolve(*user.BirthDate, now)
	}

	if user.LegacyCategory != "" {
		return ParseLegacyCategory(user.LegacyCategory)
	}

	return enum.TierIneligible, types.ErrNoAgeInput
}

// wholeYears counts completed calendar years between two dates: the year
// difference, minus one when the anniversary has not yet arrived. A Feb 29
// birth counts its anniversary on Mar 1 in non-leap years.
func wholeYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()

	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}

	return years
}
