package repository

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithCapacityHint presizes the registry for the expected number of live matches.
func WithCapacityHint(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.capacityHint = n
		}
	}
}

// WithPrioritySource overrides the random priorities used by the ordering
// index. Tests use it to get a reproducible tree shape.
func WithPrioritySource(next func() uint64) Option {
	return func(r *Registry) {
		if next != nil {
			r.priority = next
		}
	}
}
