package plans

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// PlanEntry describes a plan or an addon in a single currency.
// Prices are in the smallest currency unit, keyed by cycle.
type PlanEntry struct {
	Name     string
	Title    string
	Type     PlanType
	Currency Currency
	Pricing  map[Cycle]int64

	// PerMemberPricing is the optional per-member row. Plans that expose it are
	// priced per seat and display a per-member monthly rate.
	PerMemberPricing map[Cycle]int64

	Limits           Limits
	AddonFor         []string // base plans this addon can be attached to
	MaxAddonQuantity int      // 0 means no limit
	Free             bool

	// DefaultRenewCycle marks a variable-cycle offer: a promotional cycle that
	// renews at this cycle instead of the purchased one. Zero renews as purchased.
	DefaultRenewCycle Cycle
}

// IsAddon reports whether the entry is an addon.
func (p PlanEntry) IsAddon() bool {
	return p.Type == TypeAddon
}

// PriceFor returns the price for a single unit at cycle and whether the cycle is offered.
func (p PlanEntry) PriceFor(cycle Cycle) (int64, bool) {
	price, ok := p.Pricing[cycle]
	return price, ok
}

// HasMemberPricing reports whether a per-member row exists for cycle.
func (p PlanEntry) HasMemberPricing(cycle Cycle) bool {
	_, ok := p.PerMemberPricing[cycle]
	return ok
}

// SupportsAddon reports whether addon may be attached to this plan.
func (p PlanEntry) SupportsAddon(addon PlanEntry) bool {
	return slices.Contains(addon.AddonFor, p.Name)
}

func (p PlanEntry) clone() PlanEntry {
	p.Pricing = maps.Clone(p.Pricing)
	p.PerMemberPricing = maps.Clone(p.PerMemberPricing)
	p.AddonFor = slices.Clone(p.AddonFor)
	return p
}

// PlanIDs maps plan and addon names to quantities.
type PlanIDs map[string]int

// Quantity returns the quantity for name, zero when absent.
func (ids PlanIDs) Quantity(name string) int {
	return ids[name]
}

// Clone returns an independent copy.
func (ids PlanIDs) Clone() PlanIDs {
	if ids == nil {
		return PlanIDs{}
	}
	return maps.Clone(ids)
}

// With returns a copy with name set to quantity. Non-positive quantities remove name.
func (ids PlanIDs) With(name string, quantity int) PlanIDs {
	out := ids.Clone()
	if quantity <= 0 {
		delete(out, name)
		return out
	}
	out[name] = quantity
	return out
}

// Normalized drops non-positive quantities.
func (ids PlanIDs) Normalized() PlanIDs {
	out := make(PlanIDs, len(ids))
	for name, qty := range ids {
		if qty > 0 {
			out[name] = qty
		}
	}
	return out
}

// Names returns the sorted names with a positive quantity.
func (ids PlanIDs) Names() []string {
	names := make([]string, 0, len(ids))
	for name, qty := range ids {
		if qty > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// IsEmpty reports whether no name has a positive quantity.
func (ids PlanIDs) IsEmpty() bool {
	for _, qty := range ids {
		if qty > 0 {
			return false
		}
	}
	return true
}

// Key is a stable serialization, e.g. "1member-bundle2022:2,bundle2022:1".
func (ids PlanIDs) Key() string {
	var b strings.Builder
	for i, name := range ids.Names() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ids[name]))
	}
	return b.String()
}
