package streak_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/learnstreak/internal/domain/dateset"
	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/internal/domain/streak"
	"github.com/stretchr/testify/require"
)

// randomHistory returns up to n random dates within span days before ref.
func randomHistory(rng *rand.Rand, ref model.Date, n, span int) []model.Date {
	out := make([]model.Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ref.AddDays(-rng.Intn(span)))
	}
	return out
}

func TestComputeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ref := model.NewDate(2025, time.June, 30)

	for i := 0; i < 500; i++ {
		skip := rng.Intn(4)
		dates := randomHistory(rng, ref, 1+rng.Intn(40), 120)
		res, err := streak.Compute(dateset.New(dates...), ref, skip)
		require.NoError(t, err)

		require.GreaterOrEqual(t, res.Longest, res.Current)
		require.GreaterOrEqual(t, res.Longest, 1)
		if !res.Alive {
			require.Zero(t, res.Current)
		}

		chains, err := streak.Chains(dateset.New(dates...), skip)
		require.NoError(t, err)
		total := 0
		for _, ch := range chains {
			total += ch.Length
		}
		require.Equal(t, dateset.New(dates...).Len(), total, "chains must partition the date set")
	}
}

func TestComputeIsOrderIndependentAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ref := model.NewDate(2025, time.January, 15)
	dates := randomHistory(rng, ref, 60, 90)

	shuffled := append([]model.Date(nil), dates...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	first, err := streak.Compute(dateset.New(dates...), ref, 2)
	require.NoError(t, err)
	second, err := streak.Compute(dateset.New(dates...), ref, 2)
	require.NoError(t, err)
	reordered, err := streak.Compute(dateset.New(shuffled...), ref, 2)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, first, reordered)
}

func TestAddingNextDayNeverDecreasesStreak(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	calc, err := streak.NewCalculator()
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		ref := model.NewDate(2025, time.March, 1)
		base := dateset.New(randomHistory(rng, ref, 1+rng.Intn(25), 60)...)
		latest := base.Descending()[0]
		next := latest.AddDays(1)

		before := calc.Compute(base, next)
		after := calc.Compute(base.With(next), next)

		require.GreaterOrEqual(t, after.Current, before.Current)
		require.GreaterOrEqual(t, after.Longest, before.Longest)
	}
}
