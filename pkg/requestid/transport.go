package requestid

import "net/http"

// Transport forwards the request ID found in the outgoing request's context
// as the X-Request-ID header. A nil Base uses http.DefaultTransport.
type Transport struct {
	Base http.RoundTripper
}

func (t Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	id := FromContext(req.Context())
	if id == "" || req.Header.Get(Header) != "" {
		return base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set(Header, id)
	return base.RoundTrip(req)
}
