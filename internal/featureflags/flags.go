// Package featureflags evaluates dot-delimited feature flag names
// (e.g. "credit-cards.pre-approved-offers") against environment variables
// with config-provided defaults.
//
// Env naming convention: "credit-cards.pre-approved-offers" becomes
// FEATURE_FLAG_CREDIT_CARDS_PRE_APPROVED_OFFERS.
package featureflags

import (
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/ecosystem/web-bff/internal/server"
)

// FlagPreApprovedOffers gates the credit-card pre-approved offer endpoint.
const FlagPreApprovedOffers = "credit-cards.pre-approved-offers"

// Provider resolves flag values. Environment variables win over the
// configured defaults; unknown flags default to off.
type Provider struct {
	mu       sync.RWMutex
	defaults map[string]bool
}

// NewProvider creates a Provider with the given configured defaults.
func NewProvider(defaults map[string]bool) *Provider {
	if defaults == nil {
		defaults = map[string]bool{}
	}
	return &Provider{defaults: defaults}
}

// IsEnabled reports whether the named flag is on.
func (p *Provider) IsEnabled(name string) bool {
	if v, ok := os.LookupEnv(envVarName(name)); ok && v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.defaults[name]
}

// All returns the resolved value of every configured flag, for the discovery
// endpoint.
func (p *Provider) All() map[string]bool {
	p.mu.RLock()
	names := make([]string, 0, len(p.defaults))
	for name := range p.defaults {
		names = append(names, name)
	}
	p.mu.RUnlock()

	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = p.IsEnabled(name)
	}
	return out
}

// Replace swaps the configured defaults, used on config reload.
func (p *Provider) Replace(defaults map[string]bool) {
	if defaults == nil {
		defaults = map[string]bool{}
	}
	p.mu.Lock()
	p.defaults = defaults
	p.mu.Unlock()
}

// Handler serves the flag discovery endpoint. It is on the public path
// allow-list: the web shell fetches flags before any login.
func (p *Provider) Handler(w http.ResponseWriter, _ *http.Request) {
	server.JSON(w, http.StatusOK, map[string]any{"flags": p.All()})
}

func envVarName(flag string) string {
	return "FEATURE_FLAG_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(flag))
}
