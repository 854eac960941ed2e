// Package requestid correlates log records and outbound calls with the
// incoming request that caused them.
//
// Middleware accepts a client supplied X-Request-ID when it is at most 128
// characters of [a-zA-Z0-9_-], and otherwise generates a UUID. The ID is
// stored in the request context and echoed in the response header.
//
// LoggerExtractor plugs the ID into logger.New, and Transport forwards it to
// the pricing service:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	client := &http.Client{Transport: requestid.Transport{}}
package requestid
