// Package estimator runs a checkout session on top of a pricecheck.Checker.
//
// An Engine holds the customer's selected configuration and current
// subscription. SelectNewPlan prices the selection, then derives the mode,
// modifiers, breakdown and line items and publishes them as an immutable
// State. Selections race freely: starting one aborts the previous check, and
// only the newest may write the state.
//
//	e := estimator.New(catalog, checker, source, estimator.WithTrial(true))
//	if err := e.Init(ctx); err != nil {
//		return err
//	}
//	st, err := e.SelectNewPlan(ctx, cfg)
//
// Billing address edits go through SetBillingAddress, which waits for typing
// to settle before re-pricing. PrefetchCycles warms the cache for the other
// cycles so switching between them is instant. Subscribe streams every new
// State to renderers.
package estimator
