// Package async provides generic helpers for running computations asynchronously
// and sharing their results.
//
// A Future is the eventual result of one computation. It can be awaited by any
// number of goroutines, each with its own context: AwaitContext gives up when the
// caller's context is done without affecting the computation or the other
// waiters. This is what lets identical price checks share one network call.
//
// Group tracks futures under an opaque id, so a caller can show a single loading
// state for a batch of background work.
//
// # Usage
//
//	f := async.Async(ctx, req, func(ctx context.Context, r Request) (Result, error) {
//		return client.Do(ctx, r)
//	})
//
//	group := async.NewGroup()
//	group.Add("prefetch", f)
//
//	res, err := f.AwaitContext(requestCtx)
//	if group.IsPending("prefetch") {
//		// still loading
//	}
//
// Resolved wraps an already known result, and WaitAll collects several futures
// in order.
package async
