package plans

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the on-disk catalog layout:
//
//	plans:
//	  - name: bundle2022
//	    title: Unlimited
//	    type: plan
//	    currency: EUR
//	    pricing: {1: 1299, 12: 11988, 24: 19176}
//	    limits: {max_members: 1, max_domains: 3}
//	    default_renew_cycle: 12
//	  - name: 1member-mailpro2022
//	    type: addon
//	    currency: EUR
//	    pricing: {1: 799, 12: 8388}
//	    limits: {max_members: 1}
//	    addon_for: [mailpro2022]
type yamlDocument struct {
	Plans []yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	Name              string          `yaml:"name"`
	Title             string          `yaml:"title"`
	Type              PlanType        `yaml:"type"`
	Currency          string          `yaml:"currency"`
	Pricing           map[Cycle]int64 `yaml:"pricing"`
	PerMemberPricing  map[Cycle]int64 `yaml:"per_member_pricing"`
	Limits            Limits          `yaml:"limits"`
	AddonFor          []string        `yaml:"addon_for"`
	MaxAddonQuantity  int             `yaml:"max_addon_quantity"`
	Free              bool            `yaml:"free"`
	DefaultRenewCycle Cycle           `yaml:"default_renew_cycle"`
}

type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source reading the catalog document at path.
func NewYAMLSource(path string) Source {
	if path == "" {
		panic("plans: YAML catalog path is required")
	}
	return &yamlSource{path: path}
}

// Load implements Source.
func (s *yamlSource) Load(ctx context.Context) ([]PlanEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	return ParseYAML(data)
}

// LoadYAML reads the catalog document at path into a MemoryCatalog.
func LoadYAML(ctx context.Context, path string) (*MemoryCatalog, error) {
	return NewCatalogFromSource(ctx, NewYAMLSource(path))
}

// ParseYAML decodes a catalog document.
func ParseYAML(data []byte) ([]PlanEntry, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	entries := make([]PlanEntry, 0, len(doc.Plans))
	for _, p := range doc.Plans {
		cur, err := ParseCurrency(p.Currency)
		if err != nil {
			return nil, errors.Join(ErrInvalidPlanEntry, err, fmt.Errorf("plan %s: %q", p.Name, p.Currency))
		}
		planType := p.Type
		if planType == "" {
			planType = TypePlan
		}
		entries = append(entries, PlanEntry{
			Name:              p.Name,
			Title:             p.Title,
			Type:              planType,
			Currency:          cur,
			Pricing:           p.Pricing,
			PerMemberPricing:  p.PerMemberPricing,
			Limits:            p.Limits,
			AddonFor:          p.AddonFor,
			MaxAddonQuantity:  p.MaxAddonQuantity,
			Free:              p.Free,
			DefaultRenewCycle: p.DefaultRenewCycle,
		})
	}
	return entries, nil
}
