package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
)

const maxBodyBytes = 1 << 20

var (
	ErrBadRequest    = errors.New("api: malformed request")
	ErrBatchTooLarge = errors.New("api: too many requests in batch")
	ErrEmptyBatch    = errors.New("api: empty batch")
	ErrRateLimited   = errors.New("api: rate limit exceeded")
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.Join(ErrBadRequest, errors.New("empty body"))
		}
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps err onto a status code and the pricing protocol error body.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, field := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
	}
	writeJSON(w, code, pricecheck.ErrorPayload{Error: err.Error(), Field: field})
}

func (h *handler) rateLimited(w http.ResponseWriter, r *http.Request, _ ratelimiter.Result, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.fail(w, r, ErrRateLimited)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pricecheck.ErrInvalidZipCode):
		return http.StatusUnprocessableEntity, pricecheck.FieldZipCode
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrEmptyBatch),
		errors.Is(err, pricecheck.ErrInvalidRequest),
		errors.Is(err, checkout.ErrInvalidConfiguration),
		errors.Is(err, plans.ErrInvalidCurrency):
		return http.StatusBadRequest, ""
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, ""
	case errors.Is(err, ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge, ""
	case errors.Is(err, pricecheck.ErrUnsupportedConfiguration):
		return http.StatusConflict, ""
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ""
	case errors.Is(err, pricecheck.ErrUnexpectedStatus),
		errors.Is(err, pricecheck.ErrDecodeResponse),
		errors.Is(err, pricecheck.ErrBatchMismatch):
		return http.StatusBadGateway, ""
	}
	return http.StatusInternalServerError, ""
}
