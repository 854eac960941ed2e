// Package redis connects to Redis and shares price check results between
// processes.
//
// Connect retries the initial ping according to Config. EstimationStore
// keeps checkout.Estimation values as JSON under a key prefix with a TTL, is
// used as the second cache level of pricecheck.Checker and reports readiness
// through Ping:
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	store := redis.NewEstimationStoreFromConfig(client, cfg.Redis)
//	checker := pricecheck.New(service, catalog, pricecheck.WithStore(store))
//
// Config fields are read from REDIS_* environment variables through
// pkg/config.
package redis
