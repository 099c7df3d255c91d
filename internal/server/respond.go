package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecosystem/web-bff/internal/domain"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as the structured error envelope. Non-APIError values are
// reported as a generic internal error; their detail belongs in the server
// logs, not the response.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		apiErr = domain.ErrInternal()
	}

	AddError(r.Context(), err)
	JSON(w, apiErr.StatusCode, apiErr.Response())
}
