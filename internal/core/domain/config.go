package domain

import "time"

// Config holds the tunable parameters of the search subsystem.
// DefaultConfig supplies working values; adapters may load overrides
// from a configuration file and reload them at runtime.
type Config struct {
	// MinQueryLength rejects shorter sanitised queries.
	MinQueryLength int

	// MaxQueryLength truncates longer raw queries before planning.
	MaxQueryLength int

	// PerTypeLimit caps candidates returned by one content type's
	// strategy, bounding downstream scoring cost.
	PerTypeLimit int

	// MaxResults caps the merged, filtered result set.
	MaxResults int

	// DefaultLimit is the page size when the caller does not set one.
	DefaultLimit int

	// TypeTimeout bounds one content type's query execution. A type
	// that overruns is treated as a partial failure, not a request
	// failure.
	TypeTimeout time.Duration

	// TypeWeights multiply the heuristic score per content type.
	TypeWeights map[ContentType]float64

	// MaxPendingEvents bounds the synchroniser's per-type backlog.
	// It is the configured staleness bound: an applied change is
	// visible once at most this many older events have drained.
	MaxPendingEvents int

	// AnalyticsQueueSize bounds the fire-and-forget event queue.
	// When full, the oldest queued event is dropped (drop-oldest
	// policy, chosen explicitly over blocking the search path).
	AnalyticsQueueSize int

	// AnalyticsBatchSize is the persistence batch size.
	AnalyticsBatchSize int

	// AnalyticsFlushInterval flushes partial batches.
	AnalyticsFlushInterval time.Duration

	// MaxSuggestions caps autocomplete and related-query lists.
	MaxSuggestions int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		MinQueryLength:         2,
		MaxQueryLength:         200,
		PerTypeLimit:           50,
		MaxResults:             100,
		DefaultLimit:           20,
		TypeTimeout:            2 * time.Second,
		TypeWeights:            DefaultTypeWeights(),
		MaxPendingEvents:       256,
		AnalyticsQueueSize:     1024,
		AnalyticsBatchSize:     32,
		AnalyticsFlushInterval: time.Second,
		MaxSuggestions:         8,
	}
}

// Config implements the ConfigSource contract, letting a plain Config
// value serve where a dynamic source is not needed.
func (c Config) Config() Config {
	return c
}

// TypeWeight returns the configured weight for t, defaulting to 1.
func (c Config) TypeWeight(t ContentType) float64 {
	if w, ok := c.TypeWeights[t]; ok {
		return w
	}
	return 1.0
}
