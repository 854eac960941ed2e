package estimator

import (
	"context"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
)

// SubscriptionSource loads the customer's current subscription.
type SubscriptionSource interface {
	Current(ctx context.Context) (checkout.CurrentSubscription, error)
}

// Checker prices requests. *pricecheck.Checker implements it.
type Checker interface {
	CheckOne(ctx context.Context, req pricecheck.Request) (checkout.Estimation, error)
	Check(ctx context.Context, reqs ...pricecheck.Request) ([]*checkout.Estimation, error)
	NewGroupID() pricecheck.GroupID
	IsGroupPending(group pricecheck.GroupID) bool
}

var _ Checker = (*pricecheck.Checker)(nil)

// StaticSource always returns the same subscription. A nil subscription is a
// free one.
type StaticSource struct {
	Subscription checkout.CurrentSubscription
}

func (s StaticSource) Current(context.Context) (checkout.CurrentSubscription, error) {
	if s.Subscription == nil {
		return checkout.FreeSubscription{}, nil
	}
	return s.Subscription, nil
}
