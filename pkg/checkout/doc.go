// Package checkout holds the pure pricing rules behind a subscription checkout.
//
// Given what the user holds (CurrentSubscription), what they are about to buy
// (SelectedConfiguration) and a priced quote (Estimation), the package answers:
//
//   - how the change is billed: ResolveMode and NewModifiers
//   - what it costs per month and per cycle, and how big the discount is: Aggregate
//   - which line items a checkout shows and with which numbers: Compose
//   - what the renewal disclosure says: NewRenewalNotice
//
// Nothing here performs I/O. The plan catalog is passed explicitly to every
// function that needs it.
//
// # Usage
//
//	cfg := checkout.SelectedConfiguration{
//		PlanIDs:  plans.PlanIDs{"bundle2022": 1},
//		Cycle:    plans.TwoYears,
//		Currency: "EUR",
//	}
//	est := checkout.NewOptimisticEstimation(cfg, current, catalog, checkout.OptimisticOptions{})
//	breakdown := checkout.Aggregate(cfg, est, catalog, checkout.AggregateOptions{})
//	items := checkout.Compose(checkout.ComposeInput{
//		Breakdown:  breakdown,
//		Estimation: est,
//		Modifiers:  checkout.ModifiersFor(est),
//		Current:    current,
//		Now:        time.Now(),
//	})
//	for _, item := range items.Visible() {
//		render(item)
//	}
//
// Renderers that must handle every kind implement Visitor and call
// LineItems.Accept.
package checkout
