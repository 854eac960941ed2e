package pricecheck

import (
	"context"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

// Service is the authoritative pricing backend.
type Service interface {
	CheckSubscription(ctx context.Context, req Request) (checkout.Estimation, error)
}

// MultiChecker is implemented by services that can price several
// configurations in one round trip. Results are positional.
type MultiChecker interface {
	MultiCheck(ctx context.Context, reqs []Request) ([]checkout.Estimation, error)
}

// Store is a shared second-level cache, e.g. Redis. A miss is reported with
// ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (est checkout.Estimation, ok bool, err error)
	Set(ctx context.Context, key string, est checkout.Estimation) error
}

// SubscriptionProvider returns the subscription of the user being priced.
type SubscriptionProvider interface {
	Current(ctx context.Context) (checkout.CurrentSubscription, error)
}
