package pricecheck

import "errors"

var (
	ErrInvalidRequest = errors.New("pricecheck: invalid request")

	// ErrInvalidZipCode is returned when the pricing service rejects the
	// billing address zip code. The estimator keeps its previous estimation.
	ErrInvalidZipCode = errors.New("pricecheck: invalid zip code")

	ErrUnsupportedConfiguration = errors.New("pricecheck: configuration cannot be purchased")
	ErrUnexpectedStatus         = errors.New("pricecheck: unexpected response status")
	ErrDecodeResponse           = errors.New("pricecheck: failed to decode response")
	ErrBatchMismatch            = errors.New("pricecheck: batch response size does not match request")
)
