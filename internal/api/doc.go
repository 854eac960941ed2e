// Package api is the checkoutd HTTP surface.
//
// Routes:
//
//	GET  /healthz          liveness
//	GET  /readyz           readiness (Redis when configured)
//	GET  /metrics          Prometheus scrape
//	GET  /v1/plans         catalog for ?currency=
//	POST /v1/estimate      mode, breakdown and visible line items for a selection
//	POST /v1/check         pricing protocol, single request
//	POST /v1/check/batch   pricing protocol, batch
//
// Errors use the pricing protocol body {"error": "...", "field": "..."}. A
// rejected zip code is 422 with field zip_code, so another checkoutd (or any
// pricecheck.HTTPService client) can point at this one.
package api
