package plans

import "errors"

var (
	ErrInvalidCurrency   = errors.New("plans: invalid currency code")
	ErrInvalidCycle      = errors.New("plans: invalid billing cycle")
	ErrInvalidPlanEntry  = errors.New("plans: invalid plan entry")
	ErrDuplicateEntry    = errors.New("plans: duplicate plan entry")
	ErrEmptyCatalog      = errors.New("plans: catalog has no entries")
	ErrFailedToLoadPlans = errors.New("plans: failed to load catalog")
)
