package estimator

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

const DefaultAddressDebounce = 500 * time.Millisecond

type options struct {
	logger           *slog.Logger
	debounce         time.Duration
	now              func() time.Time
	trial            bool
	paymentForbidden bool
	coupon           *checkout.CouponConfig
}

// Option configures an Engine.
type Option func(*options)

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithAddressDebounce sets how long SetBillingAddress waits for typing to
// settle before re-pricing. Panics if d is negative.
func WithAddressDebounce(d time.Duration) Option {
	if d < 0 {
		panic("estimator: address debounce must not be negative")
	}
	return func(o *options) {
		o.debounce = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTrial prices free customers as starting a trial.
func WithTrial(trial bool) Option {
	return func(o *options) {
		o.trial = trial
	}
}

// WithPaymentForbidden hides the amount due, for viewers who cannot pay.
func WithPaymentForbidden(forbidden bool) Option {
	return func(o *options) {
		o.paymentForbidden = forbidden
	}
}

// WithCouponConfig sets how a preconfigured coupon is displayed. It only
// applies while that coupon is the selected one.
func WithCouponConfig(cfg checkout.CouponConfig) Option {
	return func(o *options) {
		o.coupon = &cfg
	}
}
