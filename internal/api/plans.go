package api

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

type PlanResponse struct {
	Name              string                `json:"name"`
	Title             string                `json:"title,omitempty"`
	Type              plans.PlanType        `json:"type"`
	Free              bool                  `json:"free,omitempty"`
	Pricing           map[plans.Cycle]int64 `json:"pricing"`
	PerMemberPricing  map[plans.Cycle]int64 `json:"per_member_pricing,omitempty"`
	FormattedMonthly  string                `json:"formatted_monthly,omitempty"`
	AddonFor          []string              `json:"addon_for,omitempty"`
	MaxAddonQuantity  int                   `json:"max_addon_quantity,omitempty"`
	DefaultRenewCycle plans.Cycle           `json:"default_renew_cycle,omitempty"`
	MaxMembers        int                   `json:"max_members,omitempty"`
}

type PlansResponse struct {
	Currency plans.Currency `json:"currency"`
	Plans    []PlanResponse `json:"plans"`
}

// listPlans serves GET /v1/plans?currency=EUR. The currency may be omitted
// when the catalog only has one.
func (h *handler) listPlans(w http.ResponseWriter, r *http.Request) {
	cur, err := h.currency(r.URL.Query().Get("currency"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries := h.catalog.Entries(cur)
	out := PlansResponse{Currency: cur, Plans: make([]PlanResponse, 0, len(entries))}
	for _, p := range entries {
		resp := PlanResponse{
			Name:              p.Name,
			Title:             p.Title,
			Type:              p.Type,
			Free:              p.Free,
			Pricing:           p.Pricing,
			PerMemberPricing:  p.PerMemberPricing,
			AddonFor:          p.AddonFor,
			MaxAddonQuantity:  p.MaxAddonQuantity,
			DefaultRenewCycle: p.DefaultRenewCycle,
			MaxMembers:        p.Limits.MaxMembers,
		}
		if monthly, ok := p.PriceFor(plans.Monthly); ok && !p.Free {
			resp.FormattedMonthly = checkout.FormatAmount(monthly, cur)
		}
		out.Plans = append(out.Plans, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) currency(raw string) (plans.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		if all := h.catalog.Currencies(); len(all) == 1 {
			return all[0], nil
		}
		return "", errors.Join(ErrBadRequest, errors.New("currency is required"))
	}
	cur, err := plans.ParseCurrency(raw)
	if err != nil {
		return "", err
	}
	if !slices.Contains(h.catalog.Currencies(), cur) {
		return "", errors.Join(ErrBadRequest, errors.New("currency not offered: "+string(cur)))
	}
	return cur, nil
}
