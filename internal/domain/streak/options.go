package streak

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithMaxSkipDays sets how many consecutive idle days a chain tolerates.
// Negative values are rejected by NewCalculator.
func WithMaxSkipDays(days int) Option {
	return func(c *Calculator) {
		c.maxSkipDays = days
	}
}
