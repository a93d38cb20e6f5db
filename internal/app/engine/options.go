package engine

import "time"

// Options tunes the engine loops.
type Options struct {
	// TickInterval is the fill period of the tick loop.
	TickInterval time.Duration
	// ReadBackoff is how long the intake loop waits after a failed read.
	ReadBackoff time.Duration
}

// DefaultEngineOptions returns the default options.
func DefaultEngineOptions() *Options {
	return &Options{
		TickInterval: 2 * time.Second,
		ReadBackoff:  100 * time.Millisecond,
	}
}
