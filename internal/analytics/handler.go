package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/ecosystem/web-bff/internal/correlation"
	"github.com/ecosystem/web-bff/internal/domain"
	"github.com/ecosystem/web-bff/internal/server"
)

// Handler passes analytics events from the web shell through to the
// downstream analytics service. Events are enriched with correlation
// identifiers and accepted immediately; forwarding happens out of band.
type Handler struct {
	sink *Sink
}

// NewHandler creates the passthrough handler over the given sink.
func NewHandler(sink *Sink) *Handler {
	return &Handler{sink: sink}
}

// PostEvent accepts a single event, enriches it, and returns 202 without
// waiting on the downstream forward.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var event map[string]any
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event == nil {
		// JSON null decodes without error but leaves the map nil.
		server.Error(w, r, domain.ErrBadRequest("Request body must be a JSON object"))
		return
	}

	corr := correlation.FromContext(r.Context())
	if corr.JourneyID != "" {
		if _, ok := event["journeyId"]; !ok {
			event["journeyId"] = corr.JourneyID
		}
	}
	if corr.UserID != "" {
		if _, ok := event["userEcosystemId"]; !ok {
			event["userEcosystemId"] = corr.UserID
		}
	}

	h.sink.Forward(event, corr)

	server.JSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// PostBatch accepts a batch payload and forwards it as one downstream call.
func (h *Handler) PostBatch(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		server.Error(w, r, domain.ErrBadRequest("Request body must be a JSON object"))
		return
	}

	corr := correlation.FromContext(r.Context())
	h.sink.ForwardBatch(payload, corr)

	server.JSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
