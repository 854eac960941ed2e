package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// BillingAddress holds the address fields that influence taxes.
type BillingAddress struct {
	CountryCode string `json:"country_code,omitempty"`
	State       string `json:"state,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
}

// Normalized upper-cases the country and zip code and strips zip code spaces.
func (a BillingAddress) Normalized() BillingAddress {
	return BillingAddress{
		CountryCode: strings.ToUpper(strings.TrimSpace(a.CountryCode)),
		State:       strings.TrimSpace(a.State),
		ZipCode:     strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(a.ZipCode), " ", "")),
	}
}

// IsZero reports whether no address field is set.
func (a BillingAddress) IsZero() bool {
	return a.Normalized() == BillingAddress{}
}

// SelectedConfiguration is what the user is about to buy.
// Values are replaced wholesale; the With* helpers return modified copies.
type SelectedConfiguration struct {
	PlanIDs        plans.PlanIDs  `json:"plan_ids"`
	Cycle          plans.Cycle    `json:"cycle"`
	Currency       plans.Currency `json:"currency"`
	Coupon         string         `json:"coupon,omitempty"`
	BillingAddress BillingAddress `json:"billing_address"`
}

// Validate checks the invariants the pure pricing functions rely on.
func (c SelectedConfiguration) Validate() error {
	if !c.Cycle.Valid() {
		return errors.Join(ErrInvalidConfiguration, ErrInvalidCycle, fmt.Errorf("cycle %d", c.Cycle))
	}
	if !c.Currency.Valid() {
		return errors.Join(ErrInvalidConfiguration, ErrInvalidCurrency, fmt.Errorf("currency %q", c.Currency))
	}
	for name, qty := range c.PlanIDs {
		if qty < 0 {
			return errors.Join(ErrInvalidConfiguration, ErrNegativeQuantity, fmt.Errorf("%s: %d", name, qty))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c SelectedConfiguration) Clone() SelectedConfiguration {
	c.PlanIDs = c.PlanIDs.Clone()
	return c
}

func (c SelectedConfiguration) WithPlanIDs(ids plans.PlanIDs) SelectedConfiguration {
	out := c.Clone()
	out.PlanIDs = ids.Clone()
	return out
}

func (c SelectedConfiguration) WithCycle(cycle plans.Cycle) SelectedConfiguration {
	out := c.Clone()
	out.Cycle = cycle
	return out
}

func (c SelectedConfiguration) WithCurrency(currency plans.Currency) SelectedConfiguration {
	out := c.Clone()
	out.Currency = currency
	return out
}

func (c SelectedConfiguration) WithCoupon(code string) SelectedConfiguration {
	out := c.Clone()
	out.Coupon = strings.TrimSpace(code)
	return out
}

func (c SelectedConfiguration) WithBillingAddress(addr BillingAddress) SelectedConfiguration {
	out := c.Clone()
	out.BillingAddress = addr
	return out
}
