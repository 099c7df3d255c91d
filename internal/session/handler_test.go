package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecosystem/web-bff/internal/analytics"
	"github.com/ecosystem/web-bff/internal/auth"
	"github.com/ecosystem/web-bff/internal/correlation"
	"github.com/ecosystem/web-bff/internal/domain"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := analytics.NewEmitter(analytics.NewSink(analytics.NewClient(srv.URL), logger, 4))
	return NewHandler(auth.NewDemoCodec(), emitter, logger)
}

func TestLoginIssuesDecodableToken(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("POST", "/api/user/session/login",
		strings.NewReader(`{"username":"admin","password":"admin"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.UserEcosystemID != "usr_demo_admin_001" {
		t.Errorf("userEcosystemId = %q", resp.UserEcosystemID)
	}
	if resp.Role != "ADMIN" {
		t.Errorf("role = %q", resp.Role)
	}

	cred, ok := auth.NewDemoCodec().Decode(resp.Token)
	if !ok {
		t.Fatalf("issued token %q does not decode", resp.Token)
	}
	if cred.UserID != "usr_demo_admin_001" || cred.Role != auth.RoleAdmin {
		t.Errorf("decoded credential = %+v", cred)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("POST", "/api/user/session/login",
		strings.NewReader(`{"username":"user","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp domain.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Error != domain.ErrorCodeInvalidCredentials {
		t.Errorf("error code = %q", resp.Error)
	}
}

func TestLoginValidatesRequiredFields(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("POST", "/api/user/session/login",
		strings.NewReader(`{"username":"","password":""}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp domain.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Error != domain.ErrorCodeValidation {
		t.Errorf("error code = %q, want validation_error", resp.Error)
	}
	if len(resp.Details) != 2 {
		t.Errorf("details = %v, want both missing fields reported", resp.Details)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("POST", "/api/user/session/login", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("POST", "/api/user/session/logout", nil)
	corr := correlation.Context{JourneyID: "jrn_x", UserID: "usr_demo_user_001"}
	req = req.WithContext(correlation.WithContext(req.Context(), corr))

	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "logged_out" {
		t.Errorf("status = %q", body["status"])
	}
}
