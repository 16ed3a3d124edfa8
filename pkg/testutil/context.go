package testutil

import (
	"net/http"
	"time"

	id "aidtrack/pkg/domain"
	"aidtrack/pkg/requestcontext"
)

// WithActor adds an authenticated actor and role to the request context,
// simulating what the auth middleware does for authenticated requests.
func WithActor(req *http.Request, actor id.UserID, role string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor, role))
}

// WithRequestTime pins the request clock, so tests control every timestamp
// the handlers and services produce.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
