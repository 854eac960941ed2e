package estimator

import "errors"

var (
	ErrSuperseded       = errors.New("estimator: superseded by a newer selection")
	ErrClosed           = errors.New("estimator: engine closed")
	ErrLoadSubscription = errors.New("estimator: failed to load current subscription")
)
