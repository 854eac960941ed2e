package checkout

import "github.com/dmitrymomot/checkoutkit/pkg/plans"

// Eligibility tells whether a configuration may be priced by the pricing service.
type Eligibility int

const (
	// EligibleNetwork configurations are priced by the pricing service.
	EligibleNetwork Eligibility = iota
	// EligibleLocal configurations are priced from the catalog alone (e.g. the free plan).
	EligibleLocal
	// EligibleForbidden configurations cannot be bought and are never sent out.
	EligibleForbidden
)

func (e Eligibility) String() string {
	switch e {
	case EligibleNetwork:
		return "network"
	case EligibleLocal:
		return "local"
	case EligibleForbidden:
		return "forbidden"
	}
	return "unknown"
}

// OptimisticReason maps local outcomes to the reason stamped on estimations.
func (e Eligibility) OptimisticReason() OptimisticReason {
	switch e {
	case EligibleLocal:
		return OptimisticLocalOnly
	case EligibleForbidden:
		return OptimisticForbidden
	}
	return OptimisticNone
}

// EligibilityRule may veto a configuration. Rules return ok=false when they
// have no opinion.
type EligibilityRule func(cfg SelectedConfiguration, current CurrentSubscription, catalog plans.Catalog) (Eligibility, bool)

// Classify decides where cfg gets priced. Built-in checks run first:
// an empty selection, the free plan and unknown plans are local; a cycle the
// catalog does not offer, an addon the plan does not accept, or an addon over
// its quantity limit is forbidden. Extra rules run afterwards in order.
func Classify(cfg SelectedConfiguration, current CurrentSubscription, catalog plans.Catalog, rules ...EligibilityRule) Eligibility {
	if cfg.PlanIDs.IsEmpty() {
		return EligibleLocal
	}
	plan, ok := catalog.PlanFromIDs(cfg.PlanIDs, cfg.Currency)
	if !ok || plan.Free {
		return EligibleLocal
	}
	if !plans.OffersCycle(catalog, cfg.PlanIDs, cfg.Cycle, cfg.Currency) {
		return EligibleForbidden
	}
	for _, name := range cfg.PlanIDs.Names() {
		entry, _ := catalog.Entry(name, cfg.Currency)
		if !entry.IsAddon() {
			if entry.Name != plan.Name {
				return EligibleForbidden
			}
			continue
		}
		if !plan.SupportsAddon(entry) {
			return EligibleForbidden
		}
		if entry.MaxAddonQuantity > 0 && cfg.PlanIDs[name] > entry.MaxAddonQuantity {
			return EligibleForbidden
		}
	}
	for _, rule := range rules {
		if verdict, ok := rule(cfg, current, catalog); ok {
			return verdict
		}
	}
	return EligibleNetwork
}

// ForbidCycleDowngradeOnRenewalOff forbids a shorter cycle on a paid
// subscription that will not renew, since the shorter terms would never start.
func ForbidCycleDowngradeOnRenewalOff(cfg SelectedConfiguration, current CurrentSubscription, _ plans.Catalog) (Eligibility, bool) {
	sub, ok := PaidSubscription(current)
	if !ok || sub.Renew || cfg.Cycle >= sub.Cycle {
		return EligibleNetwork, false
	}
	return EligibleForbidden, true
}
