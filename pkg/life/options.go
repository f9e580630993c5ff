package life

import (
	"log/slog"
	"math/rand"
)

// Defaults for New.
const (
	DefaultMaxAge      = 500
	DefaultTalentLimit = 3
	DefaultMenuSize    = 10
)

// Option configures a Life.
type Option func(*options)

type options struct {
	seed        int64
	rng         *rand.Rand
	maxAge      int
	talentLimit int
	times       int
	achieved    []int
	logger      *slog.Logger
}

// WithSeed seeds the life's random source. A zero seed is replaced by a
// random one, which Seed reports.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithRand uses rng as the random source. Seed then reports zero and the run
// cannot be replayed from it.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithMaxAge caps the age a character can reach. Values below 1 are ignored.
func WithMaxAge(age int) Option {
	return func(o *options) {
		if age > 0 {
			o.maxAge = age
		}
	}
}

// WithTalentLimit sets how many talents may be selected.
func WithTalentLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.talentLimit = n
		}
	}
}

// WithProfile carries a player's history into the life: times is the run
// counter (TMS) and achieved seeds the ever-triggered set (AVT).
func WithProfile(times int, achieved []int) Option {
	return func(o *options) {
		if times > 0 {
			o.times = times
		}
		o.achieved = achieved
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
