package api

import (
	"net/http"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/estimator"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
)

// EstimateRequest is the body of POST /v1/estimate. It extends the pricing
// protocol payload with display options.
type EstimateRequest struct {
	pricecheck.CheckPayload

	PaymentForbidden bool `json:"payment_forbidden,omitempty"`
	// CouponHidden shows a preconfigured coupon's discount without its line.
	CouponHidden bool `json:"coupon_hidden,omitempty"`
}

type EstimateResponse struct {
	Mode          checkout.Mode              `json:"mode"`
	Modifiers     checkout.Modifiers         `json:"modifiers"`
	Estimation    checkout.Estimation        `json:"estimation"`
	Breakdown     checkout.CheckoutBreakdown `json:"breakdown"`
	LineItems     []checkout.LineItem        `json:"line_items"`
	RenewalNotice checkout.RenewalNotice     `json:"renewal_notice"`
	CouponError   string                     `json:"coupon_error,omitempty"`
}

// estimate prices one configuration through a short-lived estimator session
// and returns what a checkout page renders.
func (h *handler) estimate(w http.ResponseWriter, r *http.Request) {
	var in EstimateRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	req := in.Request()

	opts := []estimator.Option{
		estimator.WithLogger(h.log),
		estimator.WithClock(h.now),
		estimator.WithTrial(req.Trial),
		estimator.WithPaymentForbidden(in.PaymentForbidden),
	}
	if in.CouponHidden && req.Config.Coupon != "" {
		opts = append(opts, estimator.WithCouponConfig(checkout.CouponConfig{Code: req.Config.Coupon, Hidden: true}))
	}

	session := estimator.New(h.catalog, h.checker, estimator.StaticSource{Subscription: req.Current}, opts...)
	defer func() { _ = session.Close() }()

	ctx := r.Context()
	if err := session.Init(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := session.SelectNewPlan(ctx, req.Config)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !st.ZipCodeValid {
		h.fail(w, r, pricecheck.ErrInvalidZipCode)
		return
	}

	resp := EstimateResponse{
		Mode:          st.Mode,
		Modifiers:     st.Modifiers,
		Estimation:    st.Estimation,
		Breakdown:     st.Breakdown,
		LineItems:     st.LineItems.Visible(),
		RenewalNotice: st.LineItems.RenewalNotice.Notice,
	}
	if st.CouponErr != nil {
		resp.CouponError = st.CouponErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
