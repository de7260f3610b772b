package store

// Option configures Store behavior.
type Option func(*StoreOptions)

// StoreOptions carries optional configuration for Store.
type StoreOptions struct {
	// BatchSize bounds how many rows are inserted per prepared statement
	// flush during an import.
	BatchSize int
}

// WithBatchSize overrides the import batch size.
func WithBatchSize(n int) Option {
	return func(opts *StoreOptions) {
		opts.BatchSize = n
	}
}
