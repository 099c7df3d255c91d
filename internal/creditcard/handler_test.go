package creditcard

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecosystem/web-bff/internal/analytics"
	"github.com/ecosystem/web-bff/internal/correlation"
	"github.com/ecosystem/web-bff/internal/domain"
	"github.com/ecosystem/web-bff/internal/featureflags"
	"github.com/ecosystem/web-bff/internal/storage/memory"
)

func testHandler(t *testing.T, flags map[string]bool) *Handler {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := analytics.NewEmitter(analytics.NewSink(analytics.NewClient(srv.URL), logger, 4))

	return NewHandler(memory.New(), emitter, featureflags.NewProvider(flags), logger, Config{
		PreApprovedLimit:    5000.00,
		RaiseLimitIncrement: 2000.00,
	})
}

func asUser(req *http.Request, userID, role string) *http.Request {
	corr := correlation.Context{RequestID: "req_t", JourneyID: "jrn_t", UserID: userID, Role: role}
	return req.WithContext(correlation.WithContext(req.Context(), corr))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return m
}

func TestAccountDefaultsForNewUser(t *testing.T) {
	h := testHandler(t, nil)

	req := asUser(httptest.NewRequest("GET", "/api/credit-card/account", nil), "usr_demo_user_001", "USER")
	rec := httptest.NewRecorder()
	h.Account(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["creditLimit"] != 5000.0 || body["availableLimit"] != 5000.0 {
		t.Errorf("limits = %v / %v, want 5000 / 5000", body["creditLimit"], body["availableLimit"])
	}
	if body["status"] != "ONBOARDED" {
		t.Errorf("status = %v", body["status"])
	}
	if !strings.HasPrefix(body["accountId"].(string), "acc_") {
		t.Errorf("accountId = %v", body["accountId"])
	}
}

func TestAdminRoleGetsDoubleInitialLimit(t *testing.T) {
	h := testHandler(t, nil)

	req := asUser(httptest.NewRequest("GET", "/api/credit-card/account", nil), "usr_demo_admin_001", "ADMIN")
	rec := httptest.NewRecorder()
	h.Account(rec, req)

	if body := decodeBody(t, rec); body["creditLimit"] != 10000.0 {
		t.Errorf("admin creditLimit = %v, want 10000", body["creditLimit"])
	}
}

func TestUnauthenticatedFallsBackToDemoUser(t *testing.T) {
	h := testHandler(t, nil)

	// No correlation context at all: fail-open auth means the request still
	// maps to the shared demo account.
	rec := httptest.NewRecorder()
	h.Account(rec, httptest.NewRequest("GET", "/api/credit-card/account", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["creditLimit"] != 5000.0 {
		t.Errorf("creditLimit = %v", body["creditLimit"])
	}
}

func TestSimulatePurchaseOutcome(t *testing.T) {
	h := testHandler(t, nil)

	req := asUser(httptest.NewRequest("POST", "/api/credit-card/actions/simulate-purchase", nil), "usr_demo_user_001", "USER")
	rec := httptest.NewRecorder()
	h.SimulatePurchase(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)

	amount := body["amount"].(float64)
	if amount < 10 || amount > 500 {
		t.Errorf("amount = %v, want within [10, 500]", amount)
	}
	// A fresh account always covers the first purchase.
	if body["status"] != "approved" {
		t.Errorf("status = %v, want approved on fresh account", body["status"])
	}
	remaining := body["remainingLimit"].(float64)
	if remaining != roundCents(5000-amount) {
		t.Errorf("remainingLimit = %v, want %v", remaining, roundCents(5000-amount))
	}
}

func TestSimulatePurchaseDeclinesWhenLimitExhausted(t *testing.T) {
	h := testHandler(t, nil)

	// Drain the available limit below the minimum purchase amount.
	drain := asUser(httptest.NewRequest("POST", "/", nil), "usr_demo_user_001", "USER")
	for i := 0; i < 200; i++ {
		rec := httptest.NewRecorder()
		h.SimulatePurchase(rec, drain)
		if decodeBody(t, rec)["remainingLimit"].(float64) < 10 {
			break
		}
	}

	rec := httptest.NewRecorder()
	h.Account(rec, drain)
	if decodeBody(t, rec)["availableLimit"].(float64) >= 10 {
		t.Skip("drain did not exhaust the limit; random amounts ran small")
	}

	rec = httptest.NewRecorder()
	h.SimulatePurchase(rec, drain)
	body := decodeBody(t, rec)
	if body["status"] != "declined" {
		t.Errorf("status = %v, want declined", body["status"])
	}
	if body["message"] != "Insufficient available credit" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestRaiseLimit(t *testing.T) {
	h := testHandler(t, nil)

	req := asUser(httptest.NewRequest("POST", "/api/credit-card/actions/raise-limit", nil), "usr_demo_user_001", "USER")
	rec := httptest.NewRecorder()
	h.RaiseLimit(rec, req)

	body := decodeBody(t, rec)
	if body["newLimit"] != 7000.0 {
		t.Errorf("newLimit = %v, want 7000", body["newLimit"])
	}
	if body["availableLimit"] != 7000.0 {
		t.Errorf("availableLimit = %v, want 7000", body["availableLimit"])
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	h := testHandler(t, nil)
	user := func(target string) *http.Request {
		return asUser(httptest.NewRequest("POST", target, nil), "usr_demo_user_001", "USER")
	}

	h.RaiseLimit(httptest.NewRecorder(), user("/api/credit-card/actions/raise-limit"))
	h.SimulatePurchase(httptest.NewRecorder(), user("/api/credit-card/actions/simulate-purchase"))

	rec := httptest.NewRecorder()
	h.Reset(rec, user("/api/credit-card/actions/reset"))

	body := decodeBody(t, rec)
	if body["status"] != "reset" {
		t.Errorf("status = %v", body["status"])
	}
	if body["creditLimit"] != 5000.0 || body["availableLimit"] != 5000.0 {
		t.Errorf("limits after reset = %v / %v, want 5000 / 5000", body["creditLimit"], body["availableLimit"])
	}
}

func TestOfferFeatureDisabled(t *testing.T) {
	h := testHandler(t, map[string]bool{featureflags.FlagPreApprovedOffers: false})

	req := asUser(httptest.NewRequest("GET", "/api/credit-card/offer", nil), "usr_demo_user_001", "USER")
	rec := httptest.NewRecorder()
	h.Offer(rec, req)

	body := decodeBody(t, rec)
	if body["featureEnabled"] != false {
		t.Errorf("featureEnabled = %v, want false", body["featureEnabled"])
	}
}

func TestOfferByRole(t *testing.T) {
	h := testHandler(t, map[string]bool{featureflags.FlagPreApprovedOffers: true})

	req := asUser(httptest.NewRequest("GET", "/api/credit-card/offer", nil), "usr_demo_user_001", "USER")
	rec := httptest.NewRecorder()
	h.Offer(rec, req)
	if body := decodeBody(t, rec); body["preApprovedLimit"] != 5000.0 {
		t.Errorf("user preApprovedLimit = %v, want 5000", body["preApprovedLimit"])
	}

	req = asUser(httptest.NewRequest("GET", "/api/credit-card/offer", nil), "usr_demo_admin_001", "ADMIN")
	rec = httptest.NewRecorder()
	h.Offer(rec, req)
	body := decodeBody(t, rec)
	if body["preApprovedLimit"] != 10000.0 {
		t.Errorf("admin preApprovedLimit = %v, want 10000", body["preApprovedLimit"])
	}
	if body["status"] != "PRE_APPROVED" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestSignOnboarding(t *testing.T) {
	h := testHandler(t, nil)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   domain.ErrorCode
	}{
		{"accepts exact", `{"signature":"I agree"}`, http.StatusOK, ""},
		{"accepts case and space variants", `{"signature":"  i AGREE  "}`, http.StatusOK, ""},
		{"rejects other text", `{"signature":"no thanks"}`, http.StatusBadRequest, domain.ErrorCodeInvalidSignature},
		{"rejects blank", `{"signature":""}`, http.StatusBadRequest, domain.ErrorCodeValidation},
		{"rejects malformed body", `not json`, http.StatusBadRequest, domain.ErrorCodeBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest("POST", "/api/credit-card/onboarding/sign",
				strings.NewReader(tc.body)), "usr_demo_user_001", "USER")
			rec := httptest.NewRecorder()
			h.SignOnboarding(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantCode != "" {
				var resp domain.ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if resp.Error != tc.wantCode {
					t.Errorf("error code = %q, want %q", resp.Error, tc.wantCode)
				}
				return
			}
			body := decodeBody(t, rec)
			if body["status"] != "ONBOARDED" {
				t.Errorf("status = %v", body["status"])
			}
		})
	}
}
