// Package kit holds transport-agnostic service plumbing shared by the
// recflow HTTP and MCP surfaces.
package kit

import "context"

// Endpoint is a transport-agnostic request handler. Transports (chi, MCP)
// decode their wire format into a typed request, call the endpoint, and
// encode the response.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(next Endpoint) Endpoint

// Chain composes middlewares left-to-right around an endpoint.
func Chain(e Endpoint, mws ...Middleware) Endpoint {
	for i := len(mws) - 1; i >= 0; i-- {
		e = mws[i](e)
	}
	return e
}
