// Package creditcard implements the credit-card demo endpoints: account
// state, purchase simulation, limit raises, resets, the pre-approved offer,
// and onboarding signature.
package creditcard

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/ecosystem/web-bff/internal/analytics"
	"github.com/ecosystem/web-bff/internal/auth"
	"github.com/ecosystem/web-bff/internal/correlation"
	"github.com/ecosystem/web-bff/internal/domain"
	"github.com/ecosystem/web-bff/internal/featureflags"
	"github.com/ecosystem/web-bff/internal/server"
	"github.com/ecosystem/web-bff/internal/storage"
)

// fallbackUserID serves unauthenticated demo traffic; auth is fail-open, so
// every request must map to some account.
const fallbackUserID = "usr_demo_user_001"

// Config carries the demo credit policy knobs.
type Config struct {
	PreApprovedLimit    float64
	RaiseLimitIncrement float64
}

// Handler serves the credit-card endpoints.
type Handler struct {
	store   storage.AccountStore
	emitter *analytics.Emitter
	flags   *featureflags.Provider
	logger  *slog.Logger
	cfg     Config
}

// NewHandler creates the credit-card handler.
func NewHandler(store storage.AccountStore, emitter *analytics.Emitter, flags *featureflags.Provider, logger *slog.Logger, cfg Config) *Handler {
	return &Handler{store: store, emitter: emitter, flags: flags, logger: logger, cfg: cfg}
}

// Account returns the current simulated account state.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	userID, role := h.identity(r)

	acc, err := h.store.GetOrCreate(r.Context(), userID, h.initialLimit(role))
	if err != nil {
		h.logger.Error("account lookup failed", slog.String("error", err.Error()))
		server.Error(w, r, domain.ErrInternal())
		return
	}

	server.JSON(w, http.StatusOK, map[string]any{
		"accountId":      accountID(userID),
		"status":         "ONBOARDED",
		"creditLimit":    acc.CreditLimit,
		"availableLimit": acc.AvailableLimit,
	})
}

// SimulatePurchase attempts a purchase with a random amount between 10 and
// 500, approved when the available limit covers it.
func (h *Handler) SimulatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, role := h.identity(r)

	amount := roundCents(10 + rand.Float64()*490)

	var status, message string
	acc, err := h.store.Update(r.Context(), userID, h.initialLimit(role), func(acc *storage.Account) {
		if acc.AvailableLimit >= amount {
			acc.AvailableLimit = roundCents(acc.AvailableLimit - amount)
			status = "approved"
			message = "Purchase successful"
		} else {
			status = "declined"
			message = "Insufficient available credit"
		}
	})
	if err != nil {
		h.logger.Error("purchase update failed", slog.String("error", err.Error()))
		server.Error(w, r, domain.ErrInternal())
		return
	}

	h.logger.Info("purchase simulated",
		slog.String("user_ecosystem_id", userID),
		slog.Float64("amount", amount),
		slog.String("status", status))

	h.emitter.PurchaseSimulated(r.Context(), map[string]any{
		"amount": amount,
		"status": status,
	})

	server.JSON(w, http.StatusOK, map[string]any{
		"status":         status,
		"amount":         amount,
		"message":        message,
		"remainingLimit": acc.AvailableLimit,
	})
}

// RaiseLimit increases both the credit limit and the available limit by the
// configured increment.
func (h *Handler) RaiseLimit(w http.ResponseWriter, r *http.Request) {
	userID, role := h.identity(r)

	var oldLimit float64
	acc, err := h.store.Update(r.Context(), userID, h.initialLimit(role), func(acc *storage.Account) {
		oldLimit = acc.CreditLimit
		acc.CreditLimit = roundCents(acc.CreditLimit + h.cfg.RaiseLimitIncrement)
		acc.AvailableLimit = roundCents(acc.AvailableLimit + h.cfg.RaiseLimitIncrement)
	})
	if err != nil {
		h.logger.Error("raise limit failed", slog.String("error", err.Error()))
		server.Error(w, r, domain.ErrInternal())
		return
	}

	h.logger.Info("limit raised",
		slog.String("user_ecosystem_id", userID),
		slog.Float64("old_limit", oldLimit),
		slog.Float64("new_limit", acc.CreditLimit))

	h.emitter.LimitRaised(r.Context(), map[string]any{
		"oldLimit": oldLimit,
		"newLimit": acc.CreditLimit,
	})

	server.JSON(w, http.StatusOK, map[string]any{
		"newLimit":       acc.CreditLimit,
		"availableLimit": acc.AvailableLimit,
		"message":        fmt.Sprintf("Limit increased by $%.2f", h.cfg.RaiseLimitIncrement),
	})
}

// Reset restores the account to its initial state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, role := h.identity(r)

	acc, err := h.store.Reset(r.Context(), userID, h.initialLimit(role))
	if err != nil {
		h.logger.Error("account reset failed", slog.String("error", err.Error()))
		server.Error(w, r, domain.ErrInternal())
		return
	}

	h.logger.Info("account reset",
		slog.String("user_ecosystem_id", userID),
		slog.Float64("limit", acc.CreditLimit))

	h.emitter.AccountReset(r.Context())

	server.JSON(w, http.StatusOK, map[string]any{
		"status":         "reset",
		"creditLimit":    acc.CreditLimit,
		"availableLimit": acc.AvailableLimit,
		"message":        "Account has been reset",
	})
}

// Offer returns the pre-approved credit card offer when the feature flag is
// on. Admins see twice the standard pre-approved limit.
func (h *Handler) Offer(w http.ResponseWriter, r *http.Request) {
	userID, role := h.identity(r)

	if !h.flags.IsEnabled(featureflags.FlagPreApprovedOffers) {
		server.JSON(w, http.StatusOK, map[string]any{
			"featureEnabled": false,
			"message":        "Pre-approved offers are not currently available",
		})
		return
	}

	limit := h.cfg.PreApprovedLimit
	if role == auth.RoleAdmin {
		limit = roundCents(limit * 2)
	}

	h.logger.Info("returning credit card offer", slog.String("user_ecosystem_id", userID))

	h.emitter.OfferViewed(r.Context(), map[string]any{"limit": limit})

	server.JSON(w, http.StatusOK, map[string]any{
		"offerId":          "offer_" + accountID(userID)[4:],
		"preApprovedLimit": limit,
		"status":           "PRE_APPROVED",
	})
}

type signatureRequest struct {
	Signature string `json:"signature"`
}

// SignOnboarding completes the onboarding flow. The demo contract is typing
// "I agree".
func (h *Handler) SignOnboarding(w http.ResponseWriter, r *http.Request) {
	var req signatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, r, domain.ErrBadRequest("Request body must be a JSON object"))
		return
	}
	if req.Signature == "" {
		server.Error(w, r, domain.ErrValidation("signature: must not be blank"))
		return
	}
	if !strings.EqualFold(strings.TrimSpace(req.Signature), "i agree") {
		server.Error(w, r, domain.ErrInvalidSignature())
		return
	}

	userID, _ := h.identity(r)
	signedAt := time.Now().UTC().Format(time.RFC3339)

	h.logger.Info("processing onboarding signature", slog.String("user_ecosystem_id", userID))

	h.emitter.OnboardingSigned(r.Context(), map[string]any{
		"signedAt":      signedAt,
		"signatureText": req.Signature,
	})

	server.JSON(w, http.StatusOK, map[string]any{
		"status":   "ONBOARDED",
		"message":  "Congratulations! Your credit card is now active.",
		"signedAt": signedAt,
	})
}

// identity resolves the acting user from the correlation context, falling
// back to the shared demo user when the request is unauthenticated.
func (h *Handler) identity(r *http.Request) (string, auth.Role) {
	corr := correlation.FromContext(r.Context())
	if corr.UserID == "" {
		return fallbackUserID, auth.RoleUser
	}
	return corr.UserID, auth.ParseRole(corr.Role)
}

// initialLimit is the starting credit limit for a new account. Entitlement
// derives from the authenticated role, not from the shape of the user ID.
func (h *Handler) initialLimit(role auth.Role) float64 {
	if role == auth.RoleAdmin {
		return roundCents(h.cfg.PreApprovedLimit * 2)
	}
	return h.cfg.PreApprovedLimit
}

func accountID(userID string) string {
	hash := fnv.New32a()
	hash.Write([]byte(userID))
	return fmt.Sprintf("acc_%08x", hash.Sum32())
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
