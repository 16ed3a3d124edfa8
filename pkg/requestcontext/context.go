// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them, and tests
// inject them without running the HTTP chain.
//
// Usage in services (read values):
//
//	actorID := requestcontext.ActorID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, actorID, role)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
package requestcontext

import (
	"context"
	"time"

	id "aidtrack/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	actorIDKey     struct{}
	actorRoleKey   struct{}
	clientIPKey    struct{}
	stationKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Role names carried in the access token. Ordering is operator < auditor < admin.
const (
	RoleOperator = "operator"
	RoleAuditor  = "auditor"
	RoleAdmin    = "admin"
)

// roleRank orders roles for Allows. Unknown roles rank below operator.
var roleRank = map[string]int{
	RoleOperator: 1,
	RoleAuditor:  2,
	RoleAdmin:    3,
}

// RoleAllows reports whether have meets or exceeds the required role.
func RoleAllows(have, required string) bool {
	return roleRank[have] >= roleRank[required]
}

// -----------------------------------------------------------------------------
// Actor (authenticated principal)
// -----------------------------------------------------------------------------

// ActorID retrieves the authenticated principal from the context.
// Returns the zero UserID when unset; the audit trail records that as a
// system-initiated change.
func ActorID(ctx context.Context) id.UserID {
	if actor, ok := ctx.Value(actorIDKey{}).(id.UserID); ok {
		return actor
	}
	return id.UserID{}
}

// Role retrieves the principal's role from the context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(actorRoleKey{}).(string); ok {
		return role
	}
	return ""
}

// WithActor injects the authenticated principal and role into the context.
func WithActor(ctx context.Context, actor id.UserID, role string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey{}, actor)
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// -----------------------------------------------------------------------------
// Client metadata
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// Station retrieves the human-readable description of the recording station
// (derived from the User-Agent) from the context.
func Station(ctx context.Context) string {
	if s, ok := ctx.Value(stationKey{}).(string); ok {
		return s
	}
	return ""
}

// WithClientMetadata injects client IP and station description into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, station string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, stationKey{}, station)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, tests without injection).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context so a whole request (or a
// test scenario) observes one consistent clock reading.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
