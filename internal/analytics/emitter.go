package analytics

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/ecosystem/web-bff/internal/correlation"
)

// fallbackJourneyID is used when a request carries no journey correlator, so
// downstream aggregation always has a journey bucket.
const fallbackJourneyID = "jrn_unknown"

// Emitter provides the domain event vocabulary over a Sink. Each helper
// builds a fully-populated event from the request context: correlation IDs
// come from the correlation Context, trace and span IDs from the active
// OpenTelemetry span.
type Emitter struct {
	sink *Sink
}

// NewEmitter creates an Emitter over the given sink.
func NewEmitter(sink *Sink) *Emitter {
	return &Emitter{sink: sink}
}

// Emit builds and fires a generic event using correlation identifiers from ctx.
func (e *Emitter) Emit(ctx context.Context, eventName, domain, entity, action string, metadata map[string]any) {
	corr := correlation.FromContext(ctx)

	event := NewEvent(eventName, domain, entity, action)
	event.JourneyID = corr.JourneyID
	if event.JourneyID == "" {
		event.JourneyID = fallbackJourneyID
	}
	event.UserEcosystemID = corr.UserID
	event.Metadata = metadata

	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		event.TraceID = span.TraceID().String()
		event.SpanID = span.SpanID().String()
	}

	e.sink.Emit(event, corr)
}

// LoggedIn records a session creation for the given user. The user ID is
// passed explicitly because at login time the request context carries no
// credential yet.
func (e *Emitter) LoggedIn(ctx context.Context, userID string) {
	corr := correlation.FromContext(ctx)
	corr.UserID = userID
	e.Emit(correlation.WithContext(ctx, corr), "logged_in", "user", "session", "created", nil)
}

// LoggedOut records a session end.
func (e *Emitter) LoggedOut(ctx context.Context) {
	e.Emit(ctx, "logged_out", "user", "session", "ended", nil)
}

// OfferViewed records an offer impression.
func (e *Emitter) OfferViewed(ctx context.Context, offer map[string]any) {
	e.Emit(ctx, "offer_viewed", "credit-card", "offer", "viewed", offer)
}

// OnboardingSigned records a completed onboarding signature.
func (e *Emitter) OnboardingSigned(ctx context.Context, details map[string]any) {
	e.Emit(ctx, "onboarding_signed", "credit-card", "onboarding", "signed", details)
}

// PurchaseSimulated records a simulated purchase attempt.
func (e *Emitter) PurchaseSimulated(ctx context.Context, details map[string]any) {
	e.Emit(ctx, "purchase_simulated", "credit-card", "purchase", "simulated", details)
}

// LimitRaised records a credit limit increase.
func (e *Emitter) LimitRaised(ctx context.Context, details map[string]any) {
	e.Emit(ctx, "limit_raised", "credit-card", "limit", "raised", details)
}

// AccountReset records an account reset.
func (e *Emitter) AccountReset(ctx context.Context) {
	e.Emit(ctx, "account_reset", "credit-card", "account", "reset", nil)
}
