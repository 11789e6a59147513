package testutil

import (
	"net/http"
	"time"

	id "meridian/pkg/domain"
	"meridian/pkg/requestcontext"
)

// WithTenant adds a tenant ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the tenantID is not a valid UUID, it will not be added to the context.
func WithTenant(req *http.Request, tenantID string) *http.Request {
	parsed, err := id.ParseTenantID(tenantID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithTenantID(req.Context(), parsed))
}

// WithRequestTime pins the request-scoped evaluation time, as the middleware
// chain would.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID adds a correlation ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
