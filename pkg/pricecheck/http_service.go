package pricecheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

const (
	defaultHTTPTimeout = 8 * time.Second
	maxErrorBody       = 4 << 10
)

// HTTPService prices configurations against a remote backend speaking the
// JSON protocol in wire.go.
type HTTPService struct {
	baseURL string
	http    *http.Client
	headers http.Header
}

// HTTPOption configures an HTTPService.
type HTTPOption func(*HTTPService)

// WithHTTPClient replaces the default client. Nil is ignored.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPService) {
		if c != nil {
			s.http = c
		}
	}
}

// WithHeader sets a header on every outgoing request, e.g. an API key.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPService) {
		s.headers.Set(key, value)
	}
}

// NewHTTPService returns a client for baseURL. It panics on an empty URL.
func NewHTTPService(baseURL string, opts ...HTTPOption) *HTTPService {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		panic("pricecheck: NewHTTPService: empty base URL")
	}
	s := &HTTPService{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckSubscription implements Service.
func (s *HTTPService) CheckSubscription(ctx context.Context, req Request) (checkout.Estimation, error) {
	var est checkout.Estimation
	if err := s.post(ctx, CheckPath, NewCheckPayload(req), &est); err != nil {
		return checkout.Estimation{}, err
	}
	return est, nil
}

// MultiCheck implements MultiChecker.
func (s *HTTPService) MultiCheck(ctx context.Context, reqs []Request) ([]checkout.Estimation, error) {
	body := BatchPayload{Requests: make([]CheckPayload, len(reqs))}
	for i, req := range reqs {
		body.Requests[i] = NewCheckPayload(req)
	}

	var out BatchResult
	if err := s.post(ctx, BatchPath, body, &out); err != nil {
		return nil, err
	}
	if len(out.Results) != len(reqs) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrBatchMismatch, len(reqs), len(out.Results))
	}
	return out.Results, nil
}

func (s *HTTPService) post(ctx context.Context, path string, body, out any) error {
	endpoint, err := url.JoinPath(s.baseURL, path)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for key, values := range s.headers {
		httpReq.Header[key] = values
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var p ErrorPayload
	_ = json.Unmarshal(raw, &p)
	if resp.StatusCode == http.StatusUnprocessableEntity && p.Field == FieldZipCode {
		return ErrInvalidZipCode
	}

	msg := strings.TrimSpace(p.Error)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, msg)
}
