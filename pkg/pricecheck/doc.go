// Package pricecheck obtains authoritative estimations for checkout
// configurations.
//
// A Checker sits in front of a Service (the pricing backend). For each Request
// it first classifies the configuration: forbidden combinations and
// locally priced plans are answered synchronously with an optimistic
// estimation and never leave the process. Everything else is served from the
// in-process LRU cache, then from an optional shared Store, and finally from
// the Service. Identical requests in flight share one service call, which
// runs on a context detached from the first caller so an aborted caller does
// not fail the others.
//
//	checker := pricecheck.New(pricecheck.NewHTTPService(cfg.PricingURL), catalog,
//		pricecheck.WithStore(redis.NewEstimationStore(client)),
//		pricecheck.WithMetrics(pricecheck.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	est, err := checker.CheckOne(ctx, pricecheck.Request{Config: cfg, Current: current})
//
// Speculative checks are tagged with a GroupID and marked Silent, so their
// failures are logged instead of returned:
//
//	group := checker.NewGroupID()
//	_, _ = checker.Check(ctx, pricecheck.Request{Config: monthly, Group: group, Silent: true},
//		pricecheck.Request{Config: yearly, Group: group, Silent: true})
//	checker.IsGroupPending(group)
//
// HTTPService speaks the JSON protocol described by the payload types in
// wire.go; LocalService implements the same Service from the catalog alone.
package pricecheck
