package app

import "errors"

var (
	ErrLoadCatalog  = errors.New("app: failed to load plan catalog")
	ErrConnectRedis = errors.New("app: failed to connect to redis")
	ErrInvalidLevel = errors.New("app: invalid log level")
	ErrRateLimit    = errors.New("app: invalid rate limit")
)
