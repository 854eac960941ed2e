package checkout

import (
	"fmt"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// Mode describes how a subscription change is billed.
type Mode int

const (
	// ModeRegular is a fresh purchase, or a plan change charged now with proration.
	ModeRegular Mode = iota
	// ModeCustomBillings blends the rest of the current cycle with newly added addons.
	ModeCustomBillings
	// ModeScheduledChargedImmediately is paid now and takes effect at period end.
	ModeScheduledChargedImmediately
	// ModeScheduledChargedLater is paid and applied at the next renewal.
	ModeScheduledChargedLater
	// ModeTrial starts a trial from the free plan.
	ModeTrial
)

var modeNames = map[Mode]string{
	ModeRegular:                     "regular",
	ModeCustomBillings:              "custom_billings",
	ModeScheduledChargedImmediately: "scheduled_charged_immediately",
	ModeScheduledChargedLater:       "scheduled_charged_later",
	ModeTrial:                       "trial",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("checkout: unknown mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	for mode, name := range modeNames {
		if name == string(text) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("checkout: unknown mode %q", text)
}

// ModeOptions tune mode resolution.
type ModeOptions struct {
	IsTrial bool
}

// ResolveMode classifies selected against current. Rules are evaluated in
// order and the first match wins:
//
//  1. no paid subscription: Trial when opts.IsTrial, Regular otherwise
//  2. base plan or currency changed: Regular
//  3. any addon quantity increased: CustomBillings
//  4. any addon quantity decreased: ScheduledChargedLater
//  5. longer cycle: ScheduledChargedImmediately
//  6. shorter cycle: ScheduledChargedLater
//  7. Regular
//
// The catalog is only used to tell base plans from addons. Every key other
// than the base plan counts as an addon.
func ResolveMode(selected SelectedConfiguration, current CurrentSubscription, catalog plans.Catalog, opts ModeOptions) Mode {
	sub, paid := PaidSubscription(current)
	if !paid {
		if opts.IsTrial {
			return ModeTrial
		}
		return ModeRegular
	}

	selectedName := basePlanName(catalog, selected.PlanIDs, selected.Currency)
	if selectedName != basePlanName(catalog, sub.PlanIDs, sub.Currency) || selected.Currency != sub.Currency {
		return ModeRegular
	}

	increased, decreased := addonDelta(selected.PlanIDs, sub.PlanIDs, selectedName)
	switch {
	case increased:
		return ModeCustomBillings
	case decreased:
		return ModeScheduledChargedLater
	case selected.Cycle > sub.Cycle:
		return ModeScheduledChargedImmediately
	case selected.Cycle < sub.Cycle:
		return ModeScheduledChargedLater
	}
	return ModeRegular
}

// basePlanName returns the name of the base plan in ids, or "" when there is
// none. Two addon-only sets share the empty name.
func basePlanName(catalog plans.Catalog, ids plans.PlanIDs, currency plans.Currency) string {
	if plan, ok := catalog.PlanFromIDs(ids, currency); ok {
		return plan.Name
	}
	return ""
}

// addonDelta reports whether any non-plan key grew or shrank between current and selected.
func addonDelta(selected, current plans.PlanIDs, planName string) (increased, decreased bool) {
	for name := range union(selected, current) {
		if name == planName {
			continue
		}
		diff := max(selected[name], 0) - max(current[name], 0)
		if diff > 0 {
			increased = true
		}
		if diff < 0 {
			decreased = true
		}
	}
	return increased, decreased
}

func union(a, b plans.PlanIDs) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for name := range a {
		out[name] = struct{}{}
	}
	for name := range b {
		out[name] = struct{}{}
	}
	return out
}
