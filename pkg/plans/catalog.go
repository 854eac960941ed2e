package plans

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
)

// Catalog is the read-only plan catalog accessor.
type Catalog interface {
	// Entry returns the plan or addon called name in currency.
	Entry(name string, currency Currency) (PlanEntry, bool)

	// Price returns the total price of ids for cycle, in minor units.
	// Unknown names and cycles that are not offered contribute zero.
	Price(ids PlanIDs, cycle Cycle, currency Currency) int64

	// PlanFromIDs returns the base (non-addon) plan referenced by ids.
	PlanFromIDs(ids PlanIDs, currency Currency) (PlanEntry, bool)
}

// Source loads catalog entries, e.g. from a file or a remote service.
type Source interface {
	Load(ctx context.Context) ([]PlanEntry, error)
}

// MemoryCatalog is an immutable in-memory Catalog.
// It is never modified after construction and is safe for concurrent use.
type MemoryCatalog struct {
	entries map[Currency]map[string]PlanEntry
}

// NewMemoryCatalog validates entries and returns a catalog holding deep copies of them.
func NewMemoryCatalog(entries ...PlanEntry) (*MemoryCatalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &MemoryCatalog{entries: make(map[Currency]map[string]PlanEntry)}
	for _, entry := range entries {
		if err := validateEntry(entry); err != nil {
			return nil, err
		}
		byName, ok := c.entries[entry.Currency]
		if !ok {
			byName = make(map[string]PlanEntry)
			c.entries[entry.Currency] = byName
		}
		if _, exists := byName[entry.Name]; exists {
			return nil, errors.Join(ErrDuplicateEntry, fmt.Errorf("%s/%s", entry.Name, entry.Currency))
		}
		byName[entry.Name] = entry.clone()
	}
	return c, nil
}

// NewCatalogFromSource loads entries from src and builds a MemoryCatalog.
func NewCatalogFromSource(ctx context.Context, src Source) (*MemoryCatalog, error) {
	if src == nil {
		panic("plans: Source is required")
	}
	entries, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return NewMemoryCatalog(entries...)
}

// Entry implements Catalog.
func (c *MemoryCatalog) Entry(name string, currency Currency) (PlanEntry, bool) {
	entry, ok := c.entries[currency][name]
	if !ok {
		return PlanEntry{}, false
	}
	return entry.clone(), true
}

// Price implements Catalog.
func (c *MemoryCatalog) Price(ids PlanIDs, cycle Cycle, currency Currency) int64 {
	var total int64
	for name, qty := range ids {
		if qty <= 0 {
			continue
		}
		entry, ok := c.entries[currency][name]
		if !ok {
			continue
		}
		total += int64(qty) * entry.Pricing[cycle]
	}
	return total
}

// PlanFromIDs implements Catalog. Names missing from the catalog are ignored;
// with several base plans the lexicographically first one wins.
func (c *MemoryCatalog) PlanFromIDs(ids PlanIDs, currency Currency) (PlanEntry, bool) {
	for _, name := range ids.Names() {
		entry, ok := c.entries[currency][name]
		if ok && !entry.IsAddon() {
			return entry.clone(), true
		}
	}
	return PlanEntry{}, false
}

// Entries returns all entries for currency sorted by name.
func (c *MemoryCatalog) Entries(currency Currency) []PlanEntry {
	out := make([]PlanEntry, 0, len(c.entries[currency]))
	for _, entry := range c.entries[currency] {
		out = append(out, entry.clone())
	}
	slices.SortFunc(out, func(a, b PlanEntry) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Currencies returns the currencies the catalog has prices for.
func (c *MemoryCatalog) Currencies() []Currency {
	out := make([]Currency, 0, len(c.entries))
	for cur := range c.entries {
		out = append(out, cur)
	}
	slices.Sort(out)
	return out
}

// IsAddon reports whether name is a known addon in currency.
func IsAddon(catalog Catalog, name string, currency Currency) bool {
	entry, ok := catalog.Entry(name, currency)
	return ok && entry.IsAddon()
}

// OffersCycle reports whether every entry in ids has a price for cycle.
func OffersCycle(catalog Catalog, ids PlanIDs, cycle Cycle, currency Currency) bool {
	for _, name := range ids.Names() {
		entry, ok := catalog.Entry(name, currency)
		if !ok {
			return false
		}
		if _, ok := entry.PriceFor(cycle); !ok {
			return false
		}
	}
	return true
}

// MemberCount sums the members granted by every entry in ids.
func MemberCount(catalog Catalog, ids PlanIDs, currency Currency) int {
	var total int
	for name, qty := range ids {
		if qty <= 0 {
			continue
		}
		if entry, ok := catalog.Entry(name, currency); ok {
			total += qty * entry.Limits.MaxMembers
		}
	}
	return total
}

func validateEntry(p PlanEntry) error {
	if p.Name == "" {
		return errors.Join(ErrInvalidPlanEntry, errors.New("empty name"))
	}
	if !p.Currency.Valid() {
		return errors.Join(ErrInvalidPlanEntry, ErrInvalidCurrency, fmt.Errorf("plan %s: %q", p.Name, p.Currency))
	}
	switch p.Type {
	case TypePlan, TypeAddon:
	default:
		return errors.Join(ErrInvalidPlanEntry, fmt.Errorf("plan %s: unknown type %q", p.Name, p.Type))
	}
	for cycle, price := range p.Pricing {
		if !cycle.Valid() {
			return errors.Join(ErrInvalidPlanEntry, ErrInvalidCycle, fmt.Errorf("plan %s: cycle %d", p.Name, cycle))
		}
		if price < 0 {
			return errors.Join(ErrInvalidPlanEntry, fmt.Errorf("plan %s: negative price for cycle %d", p.Name, cycle))
		}
	}
	for cycle, price := range p.PerMemberPricing {
		if !cycle.Valid() || price < 0 {
			return errors.Join(ErrInvalidPlanEntry, fmt.Errorf("plan %s: invalid per-member price for cycle %d", p.Name, cycle))
		}
	}
	if p.DefaultRenewCycle < 0 {
		return errors.Join(ErrInvalidPlanEntry, ErrInvalidCycle, fmt.Errorf("plan %s: renew cycle %d", p.Name, p.DefaultRenewCycle))
	}
	return nil
}
