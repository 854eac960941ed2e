package redis

import "errors"

// Connection errors returned by Connect.
var (
	ErrEmptyConnectionURL   = errors.New("redis: empty connection URL")
	ErrInvalidConnectionURL = errors.New("redis: invalid connection URL")
	ErrNotReady             = errors.New("redis: server not ready before the connect timeout")
)

// Store errors wrap the underlying client error.
var (
	ErrStoreUnavailable = errors.New("redis: estimation store unavailable")
	ErrStoreRead        = errors.New("redis: failed to read estimation")
	ErrStoreWrite       = errors.New("redis: failed to write estimation")
	ErrStoreDecode      = errors.New("redis: failed to decode estimation")
)
