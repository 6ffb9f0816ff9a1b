package tree

import "go.uber.org/zap"

type mapOptions struct {
	policy         Policy
	logger         *zap.Logger
	statsName      string
	isStatsEnabled bool
	isDesc         bool
	isRmBorrowPred bool
}

type MapOption func(*mapOptions)

// WithPolicy selects the rebalancing rules, red-black by default.
func WithPolicy(policy Policy) MapOption {
	return func(opts *mapOptions) {
		opts.policy = policy
	}
}

// WithDesc reverses the key order.
func WithDesc() MapOption {
	return func(opts *mapOptions) {
		opts.isDesc = true
	}
}

// WithRemoveBorrowPred removes a node with two children by borrowing
// the position of its predecessor instead of its successor.
func WithRemoveBorrowPred() MapOption {
	return func(opts *mapOptions) {
		opts.isRmBorrowPred = true
	}
}

func WithLogger(logger *zap.Logger) MapOption {
	return func(opts *mapOptions) {
		opts.logger = logger
	}
}

// WithStats records the map operations into the global otel meter provider.
func WithStats(name string) MapOption {
	return func(opts *mapOptions) {
		opts.isStatsEnabled = true
		opts.statsName = name
	}
}
