package pricecheck

import (
	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// Routes served by a pricing backend speaking the JSON protocol.
const (
	CheckPath = "/v1/check"
	BatchPath = "/v1/check/batch"
)

// FieldZipCode is the ErrorPayload.Field value for a rejected zip code.
const FieldZipCode = "zip_code"

// CheckPayload is the JSON body of a check request.
type CheckPayload struct {
	PlanIDs        plans.PlanIDs           `json:"plan_ids"`
	Cycle          plans.Cycle             `json:"cycle"`
	Currency       plans.Currency          `json:"currency"`
	Coupon         string                  `json:"coupon,omitempty"`
	BillingAddress checkout.BillingAddress `json:"billing_address"`
	Trial          bool                    `json:"trial,omitempty"`

	// Subscription is the paid subscription; FreeSubscription marks a user
	// without one. Both empty lets the backend resolve the user itself.
	Subscription     *checkout.Subscription `json:"subscription,omitempty"`
	FreeSubscription bool                   `json:"free_subscription,omitempty"`
}

// NewCheckPayload converts a request into its wire form.
func NewCheckPayload(req Request) CheckPayload {
	p := CheckPayload{
		PlanIDs:        req.Config.PlanIDs.Normalized(),
		Cycle:          req.Config.Cycle,
		Currency:       req.Config.Currency,
		Coupon:         checkout.NormalizeCoupon(req.Config.Coupon),
		BillingAddress: req.Config.BillingAddress.Normalized(),
		Trial:          req.Trial,
	}
	switch cur := req.Current.(type) {
	case *checkout.Subscription:
		p.Subscription = cur
	case checkout.FreeSubscription:
		p.FreeSubscription = true
	}
	return p
}

// Request converts the payload back into a Request.
func (p CheckPayload) Request() Request {
	req := Request{
		Config: checkout.SelectedConfiguration{
			PlanIDs:        p.PlanIDs.Clone(),
			Cycle:          p.Cycle,
			Currency:       p.Currency,
			Coupon:         p.Coupon,
			BillingAddress: p.BillingAddress,
		},
		Trial: p.Trial,
	}
	switch {
	case p.Subscription != nil:
		req.Current = p.Subscription
	case p.FreeSubscription:
		req.Current = checkout.FreeSubscription{}
	}
	return req
}

type BatchPayload struct {
	Requests []CheckPayload `json:"requests"`
}

type BatchResult struct {
	Results []checkout.Estimation `json:"results"`
}

// ErrorPayload is the body of a non-2xx response.
type ErrorPayload struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
