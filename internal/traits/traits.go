// Package traits derives quantitative user traits from the behavioral
// event log. Derivation is a pure function over (events, preferences,
// language hint, now); the only persisted state is an optional cached
// snapshot of the latest result.
package traits

import (
	"github.com/adaptivebank/genui/internal/behavior"
)

// Locale is one of the two supported UI locales.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleTR Locale = "tr"
)

// SearchTerm aggregates repeated searches for the same exact term.
type SearchTerm struct {
	Term     string `json:"term" msgpack:"term"`
	Count    int    `json:"count" msgpack:"count"`
	LastSeen int64  `json:"lastSeen" msgpack:"last_seen"`
}

// BillPayProgress marks an abandoned bill-pay journey.
type BillPayProgress struct {
	Started int64 `json:"started" msgpack:"started"`
}

// UserTraits is an immutable snapshot of derived behavior. Each call to
// Derive produces a fresh value; callers never mutate a shared instance.
type UserTraits struct {
	FXAffinity       float64 `json:"fxAffinity" msgpack:"fx_affinity"`
	TransferAffinity float64 `json:"transferAffinity" msgpack:"transfer_affinity"`
	ExplorerScore    float64 `json:"explorerScore" msgpack:"explorer_score"`

	LastPaths       []string            `json:"lastPaths" msgpack:"last_paths"`
	TopActions      []behavior.ActionID `json:"topActions" msgpack:"top_actions"`
	LastBalanceSeen *int64              `json:"lastBalanceSeen" msgpack:"last_balance_seen"`

	SearchTerms []SearchTerm `json:"searchTerms" msgpack:"search_terms"`

	IncompleteBillPay *BillPayProgress `json:"incompleteBillPay" msgpack:"incomplete_bill_pay"`

	Locale       Locale `json:"locale" msgpack:"locale"`
	PrefersDense bool   `json:"prefersDense" msgpack:"prefers_dense"`
	DarkMode     bool   `json:"darkMode" msgpack:"dark_mode"`

	// Reserved extension points; current rules never populate them.
	FavoriteQuickActions []behavior.ActionID `json:"favoriteQuickActions" msgpack:"favorite_quick_actions"`
	Suppressions         map[string]int64    `json:"suppressions" msgpack:"suppressions"`
}

// Default returns the all-zero trait snapshot used when no events exist or
// storage is unavailable.
func Default() UserTraits {
	return UserTraits{
		LastPaths:            []string{},
		TopActions:           []behavior.ActionID{},
		SearchTerms:          []SearchTerm{},
		Locale:               LocaleEN,
		FavoriteQuickActions: []behavior.ActionID{},
		Suppressions:         map[string]int64{},
	}
}

// Preferences is the explicitly persisted user preference shape. Nil fields
// mean "not set" and fall back to defaults during derivation.
type Preferences struct {
	Locale       *Locale `json:"locale,omitempty"`
	DarkMode     *bool   `json:"darkMode,omitempty"`
	PrefersDense *bool   `json:"prefersDense,omitempty"`
	UseLLM       *bool   `json:"useLLM,omitempty"`
}

// LLMEnabled reports whether the user opted into the external generator.
func (p Preferences) LLMEnabled() bool {
	return p.UseLLM != nil && *p.UseLLM
}
