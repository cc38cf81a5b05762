package tier_test

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/tier"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		birthDate time.Time
		now       time.Time
		want      enum.Tier
	}{
		{
			name:      "day before 13th birthday is ineligible",
			birthDate: date(2010, time.May, 10),
			now:       date(2023, time.May, 9),
			want:      enum.TierIneligible,
		},
		{
			name:      "13th birthday itself is junior",
			birthDate: date(2010, time.May, 10),
			now:       date(2023, time.May, 10),
			want:      enum.TierMinorJunior,
		},
		{
			name:      "day before 16th birthday is junior",
			birthDate: date(2007, time.March, 15),
			now:       date(2023, time.March, 14),
			want:      enum.TierMinorJunior,
		},
		{
			name:      "16th birthday itself is senior",
			birthDate: date(2007, time.March, 15),
			now:       date(2023, time.March, 15),
			want:      enum.TierMinorSenior,
		},
		{
			name:      "day before 18th birthday is senior",
			birthDate: date(2005, time.August, 25),
			now:       date(2023, time.August, 24),
			want:      enum.TierMinorSenior,
		},
		{
			name:      "18th birthday itself is adult",
			birthDate: date(2005, time.August, 25),
			now:       date(2023, time.August, 25),
			want:      enum.TierAdult,
		},
		{
			name:      "leap day birth not yet aged on Feb 28",
			birthDate: date(2008, time.February, 29),
			now:       date(2021, time.February, 28),
			want:      enum.TierIneligible,
		},
		{
			name:      "leap day birth ages up on Mar 1 of non-leap year",
			birthDate: date(2008, time.February, 29),
			now:       date(2021, time.March, 1),
			want:      enum.TierMinorJunior,
		},
		{
			name:      "birthday later this year not yet counted",
			birthDate: date(2007, time.December, 31),
			now:       date(2023, time.January, 1),
			want:      enum.TierMinorJunior,
		},
		{
			name:      "well above adult boundary",
			birthDate: date(1980, time.June, 1),
			now:       date(2023, time.January, 1),
			want:      enum.TierAdult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tier.Resolve(tt.birthDate, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveInvalidInput(t *testing.T) {
	t.Parallel()

	now := date(2023, time.June, 15)

	tests := []struct {
		name      string
		birthDate time.Time
	}{
		{name: "zero birth date", birthDate: time.Time{}},
		{name: "birth date in the future", birthDate: date(2024, time.January, 1)},
		{name: "birth date implausibly old", birthDate: date(1850, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tier.Resolve(tt.birthDate, now)
			require.ErrorIs(t, err, types.ErrInvalidBirthDate,
				"bad input must be a validation failure, not an eligibility decision")
		})
	}
}

func TestParseLegacyCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category string
		want     enum.Tier
		wantErr  error
	}{
		{name: "junior band", category: types.LegacyCategoryJunior, want: enum.TierMinorJunior},
		{name: "senior band", category: types.LegacyCategorySenior, want: enum.TierMinorSenior},
		{name: "adult band", category: types.LegacyCategoryAdult, want: enum.TierAdult},
		{name: "unknown string", category: "adult", wantErr: types.ErrUnknownLegacyCategory},
		{name: "empty string", category: "", wantErr: types.ErrUnknownLegacyCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tier.ParseLegacyCategory(tt.category)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUser(t *testing.T) {
	t.Parallel()

	now := date(2023, time.June, 15)

	t.Run("birth date wins over legacy category", func(t *testing.T) {
		t.Parallel()

		birth := date(2004, time.January, 1)
		user := &types.User{
			BirthDate:      &birth,
			LegacyCategory: types.LegacyCategoryJunior,
		}

		got, err := tier.ResolveUser(user, now)
		require.NoError(t, err)
		assert.Equal(t, enum.TierAdult, got, "stored category must not override a real birth date")
	})

	t.Run("legacy category covers accounts without birth date", func(t *testing.T) {
		t.Parallel()

		user := &types.User{LegacyCategory: types.LegacyCategorySenior}

		got, err := tier.ResolveUser(user, now)
		require.NoError(t, err)
		assert.Equal(t, enum.TierMinorSenior, got)
	})

	t.Run("no age input at all is an error", func(t *testing.T) {
		t.Parallel()

		_, err := tier.ResolveUser(&types.User{}, now)
		require.ErrorIs(t, err, types.ErrNoAgeInput)
	})
}

func TestResolveProperties(t *testing.T) {
	t.Parallel()

	const (
		minBirthSecs = -631152000 // 1950-01-01
		maxBirthSecs = 1609372800 // 2020-12-31
	)

	properties := gopter.NewProperties(nil)

	properties.Property("tier steps up exactly on band birthdays", prop.ForAll(
		func(birthSecs int64, band int) bool {
			birth := time.Unix(birthSecs, 0).UTC()
			birthday := birth.AddDate(band, 0, 0)
			dayBefore := birthday.AddDate(0, 0, -1)

			before, err1 := tier.Resolve(birth, dayBefore)
			on, err2 := tier.Resolve(birth, birthday)
			if err1 != nil || err2 != nil {
				return false
			}

			switch band {
			case 13:
				return before == enum.TierIneligible && on == enum.TierMinorJunior
			case 16:
				return before == enum.TierMinorJunior && on == enum.TierMinorSenior
			case 18:
				return before == enum.TierMinorSenior && on == enum.TierAdult
			default:
				return false
			}
		},
		gen.Int64Range(minBirthSecs, maxBirthSecs),
		gen.OneConstOf(13, 16, 18),
	))

	properties.Property("tier never decreases as time passes", prop.ForAll(
		func(birthSecs int64, days1, days2 int) bool {
			birth := time.Unix(birthSecs, 0).UTC()
			now1 := birth.AddDate(0, 0, days1)
			now2 := now1.AddDate(0, 0, days2)

			tier1, err1 := tier.Resolve(birth, now1)
			tier2, err2 := tier.Resolve(birth, now2)

			return err1 == nil && err2 == nil && tier2 >= tier1
		},
		gen.Int64Range(minBirthSecs, maxBirthSecs),
		gen.IntRange(0, 20000),
		gen.IntRange(0, 20000),
	))

	properties.Property("future birth dates are always rejected", prop.ForAll(
		func(nowSecs int64, days int) bool {
			now := time.Unix(nowSecs, 0).UTC()
			birth := now.AddDate(0, 0, days)

			_, err := tier.Resolve(birth, now)

			return err != nil
		},
		gen.Int64Range(0, 2000000000),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t)
}
