// Package analytics forwards structured events to the downstream analytics
// service with fire-and-forget semantics: emissions never block the request
// path and their failures are absorbed, never surfaced to the caller.
package analytics

import (
	"fmt"
	"time"

	"github.com/ecosystem/web-bff/internal/correlation"
)

// Source identifies this service on emitted events.
const Source = "web-bff"

// Event is the analytics event shape sent downstream.
type Event struct {
	EventID         string         `json:"eventId"`
	EventName       string         `json:"eventName"`
	Domain          string         `json:"domain"`
	Entity          string         `json:"entity"`
	Action          string         `json:"action"`
	Timestamp       string         `json:"timestamp"`
	JourneyID       string         `json:"journeyId,omitempty"`
	UserEcosystemID string         `json:"userEcosystemId,omitempty"`
	TraceID         string         `json:"traceId,omitempty"`
	SpanID          string         `json:"spanId,omitempty"`
	Source          string         `json:"source,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Validate checks the required fields are non-empty.
func (e Event) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"eventId", e.EventID},
		{"eventName", e.EventName},
		{"domain", e.Domain},
		{"entity", e.Entity},
		{"action", e.Action},
	} {
		if f.value == "" {
			return fmt.Errorf("event field %s is required", f.name)
		}
	}
	return nil
}

// NewEvent builds an Event with a generated ID and current RFC3339 timestamp.
func NewEvent(eventName, domain, entity, action string) Event {
	return Event{
		EventID:   correlation.NewEventID(),
		EventName: eventName,
		Domain:    domain,
		Entity:    entity,
		Action:    action,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    Source,
	}
}
