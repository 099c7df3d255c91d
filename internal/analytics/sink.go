package analytics

import (
	"context"
	"log/slog"

	"github.com/ecosystem/web-bff/internal/correlation"
)

// defaultMaxInFlight bounds the number of detached emission goroutines.
// Emissions beyond the bound are dropped with a warning rather than queued.
const defaultMaxInFlight = 64

// Sink accepts events and forwards them out of band. Emit and EmitBatch
// return immediately; the forward runs on a detached goroutine with its own
// context, so a client disconnect never cancels an in-flight forward, and a
// hung downstream never blocks the request that emitted. Failures are logged
// at warning level and absorbed.
//
// Sink holds no request-scoped state and is safe for concurrent use.
type Sink struct {
	client *Client
	logger *slog.Logger
	sem    chan struct{}
}

// NewSink creates a Sink over the given client. maxInFlight <= 0 selects the
// default bound.
func NewSink(client *Client, logger *slog.Logger, maxInFlight int) *Sink {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Sink{
		client: client,
		logger: logger,
		sem:    make(chan struct{}, maxInFlight),
	}
}

// Emit forwards a single event, fire-and-forget. Events that fail validation
// are dropped with a warning; the downstream contract requires the identity
// fields.
func (s *Sink) Emit(event Event, corr correlation.Context) {
	if err := event.Validate(); err != nil {
		s.logger.Warn("analytics event dropped, invalid",
			slog.String("event", event.EventName),
			slog.String("error", err.Error()))
		return
	}
	s.dispatch(event.EventName, func(ctx context.Context) error {
		return s.client.Send(ctx, event, corr)
	})
}

// EmitBatch forwards an ordered sequence of events as one downstream call.
func (s *Sink) EmitBatch(events []Event, corr correlation.Context) {
	if len(events) == 0 {
		return
	}
	s.dispatch("batch", func(ctx context.Context) error {
		return s.client.SendBatch(ctx, map[string]any{"events": events}, corr)
	})
}

// Forward passes through an already-shaped single-event payload, used by the
// analytics passthrough endpoint.
func (s *Sink) Forward(payload map[string]any, corr correlation.Context) {
	name, _ := payload["eventName"].(string)
	s.dispatch(name, func(ctx context.Context) error {
		return s.client.Send(ctx, payload, corr)
	})
}

// ForwardBatch passes through an already-shaped batch payload.
func (s *Sink) ForwardBatch(payload map[string]any, corr correlation.Context) {
	s.dispatch("batch", func(ctx context.Context) error {
		return s.client.SendBatch(ctx, payload, corr)
	})
}

// dispatch runs send on a detached goroutine, bounded by the in-flight
// semaphore. The outcome is never joined back into the request path; under
// process shutdown in-flight forwards may be abandoned.
func (s *Sink) dispatch(eventName string, send func(context.Context) error) {
	select {
	case s.sem <- struct{}{}:
	default:
		s.logger.Warn("analytics event dropped, emission limit reached",
			slog.String("event", eventName))
		return
	}

	go func() {
		defer func() { <-s.sem }()

		if err := send(context.Background()); err != nil {
			s.logger.Warn("failed to send analytics event",
				slog.String("event", eventName),
				slog.String("error", err.Error()))
			return
		}
		s.logger.Debug("analytics event sent", slog.String("event", eventName))
	}()
}
