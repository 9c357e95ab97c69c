// Package streak computes activity streaks with a forgiveness window.
//
// A chain is a maximal run of activity dates in which consecutive dates are at
// most maxSkipDays+1 days apart. The current streak is the chain holding the
// most recent date, provided the reference date is still within the
// forgiveness window of it.
package streak

import (
	"fmt"

	"github.com/okian/learnstreak/internal/domain/dateset"
	"github.com/okian/learnstreak/internal/domain/model"
)

// DefaultMaxSkipDays is the production forgiveness window.
const DefaultMaxSkipDays = 2

// Result is the streak summary for one subject.
type Result struct {
	Current int  `json:"current_streak"`
	Longest int  `json:"longest_streak"`
	Alive   bool `json:"streak_alive"`
}

// Chain is one run of activity dates connected within the forgiveness window.
type Chain struct {
	Start  model.Date `json:"start"`
	End    model.Date `json:"end"`
	Length int        `json:"length"`
}

// Calculator holds the forgiveness configuration.
type Calculator struct {
	maxSkipDays int
}

// NewCalculator builds a Calculator. It fails on a negative forgiveness window.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{maxSkipDays: DefaultMaxSkipDays}
	for _, opt := range opts {
		opt(c)
	}
	if err := validateMaxSkipDays(c.maxSkipDays); err != nil {
		return nil, err
	}
	return c, nil
}

// MaxSkipDays returns the configured forgiveness window.
func (c *Calculator) MaxSkipDays() int { return c.maxSkipDays }

// Compute derives the streak of dates as seen on ref.
//
// ref is expected to be on or after the most recent date. Earlier reference
// dates are not rejected; the gap is computed with signed day arithmetic.
func (c *Calculator) Compute(dates dateset.Set, ref model.Date) Result {
	if dates.Len() == 0 {
		return Result{}
	}
	desc := dates.Descending()
	alive := ref.Sub(desc[0]) <= c.maxSkipDays

	chains := c.walk(desc)
	longest := 0
	for _, ch := range chains {
		longest = max(longest, ch.Length)
	}
	res := Result{Longest: longest, Alive: alive}
	if alive {
		// walk emits the newest chain first.
		res.Current = chains[0].Length
	}
	return res
}

// Chains returns every chain in dates, oldest first.
func (c *Calculator) Chains(dates dateset.Set) []Chain {
	if dates.Len() == 0 {
		return nil
	}
	chains := c.walk(dates.Descending())
	for i, j := 0, len(chains)-1; i < j; i, j = i+1, j-1 {
		chains[i], chains[j] = chains[j], chains[i]
	}
	return chains
}

// walk splits desc (most recent first) into chains, newest chain first.
func (c *Calculator) walk(desc []model.Date) []Chain {
	maxGap := c.maxSkipDays + 1
	chains := make([]Chain, 0, 1)
	cur := Chain{Start: desc[0], End: desc[0], Length: 1}
	for i := 0; i+1 < len(desc); i++ {
		if desc[i].Sub(desc[i+1]) <= maxGap {
			cur.Start = desc[i+1]
			cur.Length++
			continue
		}
		chains = append(chains, cur)
		cur = Chain{Start: desc[i+1], End: desc[i+1], Length: 1}
	}
	return append(chains, cur)
}

// Compute is a convenience wrapper for a one-off calculation.
func Compute(dates dateset.Set, ref model.Date, maxSkipDays int) (Result, error) {
	c, err := NewCalculator(WithMaxSkipDays(maxSkipDays))
	if err != nil {
		return Result{}, err
	}
	return c.Compute(dates, ref), nil
}

// Chains is a convenience wrapper around (*Calculator).Chains.
func Chains(dates dateset.Set, maxSkipDays int) ([]Chain, error) {
	c, err := NewCalculator(WithMaxSkipDays(maxSkipDays))
	if err != nil {
		return nil, err
	}
	return c.Chains(dates), nil
}

func validateMaxSkipDays(days int) error {
	if days < 0 {
		return fmt.Errorf("%w: max_skip_days must be >= 0, got %d", model.ErrInvalidArgument, days)
	}
	return nil
}
