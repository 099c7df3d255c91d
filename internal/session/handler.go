// Package session implements demo login and logout for the web shell.
package session

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ecosystem/web-bff/internal/analytics"
	"github.com/ecosystem/web-bff/internal/auth"
	"github.com/ecosystem/web-bff/internal/correlation"
	"github.com/ecosystem/web-bff/internal/domain"
	"github.com/ecosystem/web-bff/internal/server"
)

// demoUser is a hard-coded demo identity.
type demoUser struct {
	Username string
	Password string
	UserID   string
	Role     auth.Role
}

// demoUsers are the only accepted credentials in the demo deployment.
var demoUsers = []demoUser{
	{Username: "user", Password: "user", UserID: "usr_demo_user_001", Role: auth.RoleUser},
	{Username: "admin", Password: "admin", UserID: "usr_demo_admin_001", Role: auth.RoleAdmin},
}

// Handler serves the session endpoints.
type Handler struct {
	codec   auth.Codec
	emitter *analytics.Emitter
	logger  *slog.Logger
}

// NewHandler creates the session handler.
func NewHandler(codec auth.Codec, emitter *analytics.Emitter, logger *slog.Logger) *Handler {
	return &Handler{codec: codec, emitter: emitter, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token           string `json:"token"`
	UserEcosystemID string `json:"userEcosystemId"`
	Username        string `json:"username"`
	Role            string `json:"role"`
}

// Login validates demo credentials and issues a demo token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, r, domain.ErrBadRequest("Request body must be a JSON object"))
		return
	}

	var details []string
	if req.Username == "" {
		details = append(details, "username: must not be blank")
	}
	if req.Password == "" {
		details = append(details, "password: must not be blank")
	}
	if len(details) > 0 {
		server.Error(w, r, domain.ErrValidation(details...))
		return
	}

	h.logger.Info("login attempt", slog.String("username", req.Username))

	user, ok := lookupDemoUser(req.Username, req.Password)
	if !ok {
		h.logger.Warn("invalid login attempt", slog.String("username", req.Username))
		server.Error(w, r, domain.ErrInvalidCredentials())
		return
	}

	token := h.codec.Encode(user.Username, user.UserID, user.Role)

	h.emitter.LoggedIn(r.Context(), user.UserID)

	h.logger.Info("login successful",
		slog.String("username", user.Username),
		slog.String("user_ecosystem_id", user.UserID))

	server.JSON(w, http.StatusOK, loginResponse{
		Token:           token,
		UserEcosystemID: user.UserID,
		Username:        user.Username,
		Role:            string(user.Role),
	})
}

// Logout ends the session. There is no server-side session state to discard;
// the endpoint exists to record the event.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	corr := correlation.FromContext(r.Context())

	h.logger.Info("logout", slog.String("user_ecosystem_id", corr.UserID))

	if corr.JourneyID != "" && corr.UserID != "" {
		h.emitter.LoggedOut(r.Context())
	}

	server.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func lookupDemoUser(username, password string) (demoUser, bool) {
	for _, u := range demoUsers {
		if u.Username == username && u.Password == password {
			return u, true
		}
	}
	return demoUser{}, false
}
