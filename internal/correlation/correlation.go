// Package correlation carries per-request correlation identifiers through the
// request pipeline and onto outbound calls and logs.
package correlation

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Well-known correlation headers.
const (
	HeaderJourneyID       = "x-journey-id"
	HeaderUserEcosystemID = "x-user-ecosystem-id"
	HeaderRequestID       = "x-request-id"
)

// Context holds the correlation identifiers for one request. It is a value
// type: enrichment produces a new Context rather than mutating one in place.
type Context struct {
	// RequestID is always set; generated when the inbound header is absent.
	RequestID string

	// JourneyID is the client-supplied session correlator, empty when absent.
	JourneyID string

	// UserID is set only after successful credential extraction. Empty means
	// unauthenticated.
	UserID string

	// Username and Role come from the decoded credential, when present.
	Username string
	Role     string
}

// Authenticated reports whether a credential was resolved for this request.
func (c Context) Authenticated() bool {
	return c.UserID != ""
}

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey struct{}

// Derive builds a correlation Context from inbound headers, generating a new
// request ID when the header is missing or empty. Journey and user IDs are
// opaque strings passed through unmodified.
func Derive(h http.Header) Context {
	c := Context{
		RequestID: h.Get(HeaderRequestID),
		JourneyID: h.Get(HeaderJourneyID),
		UserID:    h.Get(HeaderUserEcosystemID),
	}
	if c.RequestID == "" {
		c.RequestID = NewRequestID()
	}
	return c
}

// WithContext stores the correlation Context in ctx.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext retrieves the correlation Context from ctx.
// Returns a zero Context if none is set.
func FromContext(ctx context.Context) Context {
	if c, ok := ctx.Value(contextKey{}).(Context); ok {
		return c
	}
	return Context{}
}

// NewRequestID generates a request identifier: "req_" followed by 16 hex
// characters drawn from a random UUID.
func NewRequestID() string {
	return "req_" + opaqueToken()
}

// NewEventID generates an analytics event identifier: "evt_" + 16 hex chars.
func NewEventID() string {
	return "evt_" + opaqueToken()
}

func opaqueToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
