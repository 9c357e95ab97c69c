package heatmap

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWindowDays sets how many trailing days the heatmap covers, reference
// date included. Non-positive values are rejected by NewAggregator.
func WithWindowDays(days int) Option {
	return func(a *Aggregator) {
		a.windowDays = days
	}
}
