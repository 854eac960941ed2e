package api

import (
	"net/http"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
)

const maxBatchSize = 64

// check serves the pricing protocol: one payload in, one estimation out.
func (h *handler) check(w http.ResponseWriter, r *http.Request) {
	var p pricecheck.CheckPayload
	if err := decodeJSON(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}

	est, err := h.pricing.CheckSubscription(r.Context(), p.Request())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (h *handler) checkBatch(w http.ResponseWriter, r *http.Request) {
	var p pricecheck.BatchPayload
	if err := decodeJSON(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	switch {
	case len(p.Requests) == 0:
		h.fail(w, r, ErrEmptyBatch)
		return
	case len(p.Requests) > maxBatchSize:
		h.fail(w, r, ErrBatchTooLarge)
		return
	}

	reqs := make([]pricecheck.Request, len(p.Requests))
	for i, payload := range p.Requests {
		reqs[i] = payload.Request()
	}

	var (
		results []checkout.Estimation
		err     error
	)
	if multi, ok := h.pricing.(pricecheck.MultiChecker); ok {
		results, err = multi.MultiCheck(r.Context(), reqs)
	} else {
		results = make([]checkout.Estimation, 0, len(reqs))
		for _, req := range reqs {
			est, cerr := h.pricing.CheckSubscription(r.Context(), req)
			if cerr != nil {
				err = cerr
				break
			}
			results = append(results, est)
		}
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pricecheck.BatchResult{Results: results})
}
