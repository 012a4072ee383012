// Package uischema defines the versioned UI composition schema and its
// structural validator. The schema is the single wire contract between the
// composition pipeline (rule engine or external generator) and the render
// surface; anything that does not validate is discarded, never coerced.
package uischema

import (
	"encoding/json"
	"fmt"

	"github.com/adaptivebank/genui/internal/behavior"
)

// Version is the only accepted schema version literal.
const Version = "1.0"

// MaxSections caps the number of sections in a valid schema.
const MaxSections = 8

// Component tags the closed set of renderable section kinds.
type Component string

const (
	ComponentHeroCard            Component = "HeroCard"
	ComponentAccountCard         Component = "AccountCard"
	ComponentActionGrid          Component = "ActionGrid"
	ComponentTransactionHistory  Component = "TransactionHistory"
	ComponentFXRates             Component = "FXRates"
	ComponentBalances            Component = "Balances"
	ComponentOffersCard          Component = "OffersCard"
	ComponentRecentBeneficiaries Component = "RecentBeneficiaries"
	ComponentContinueBillPay     Component = "ContinueBillPay"
)

// Props is implemented by every section prop struct. The Component method
// makes the union exhaustiveness-checked: a section can only be built from
// a prop type that names its tag.
type Props interface {
	Component() Component
}

// HeroCardProps renders the greeting banner.
type HeroCardProps struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

func (HeroCardProps) Component() Component { return ComponentHeroCard }

// AccountCardProps renders a single account summary.
type AccountCardProps struct {
	AccountType string `json:"accountType,omitempty"` // "checking" or "savings"
}

func (AccountCardProps) Component() Component { return ComponentAccountCard }

// ActionItem pairs a quick action with its localized label.
type ActionItem struct {
	Label    string            `json:"label"`
	ActionID behavior.ActionID `json:"actionId"`
}

// ActionGridProps renders the ordered quick-action grid.
type ActionGridProps struct {
	Actions []ActionItem `json:"actions"`
}

func (ActionGridProps) Component() Component { return ComponentActionGrid }

// TransactionHistoryProps renders the recent transaction list.
type TransactionHistoryProps struct {
	Compact bool `json:"compact"`
}

func (TransactionHistoryProps) Component() Component { return ComponentTransactionHistory }

// FXRatesProps renders the exchange-rate widget.
type FXRatesProps struct {
	Expanded bool `json:"expanded"`
}

func (FXRatesProps) Component() Component { return ComponentFXRates }

// BalancesProps renders the account balances block. No parameters.
type BalancesProps struct{}

func (BalancesProps) Component() Component { return ComponentBalances }

// OfferCTA is the call-to-action of an offers card.
type OfferCTA struct {
	Text     string            `json:"text"`
	ActionID behavior.ActionID `json:"actionId"`
}

// OffersCardProps renders a promotional card.
type OffersCardProps struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	CTA   *OfferCTA `json:"cta,omitempty"`
}

func (OffersCardProps) Component() Component { return ComponentOffersCard }

// RecentBeneficiariesProps renders masked transfer aliases.
type RecentBeneficiariesProps struct {
	Aliases []string `json:"aliases"`
}

func (RecentBeneficiariesProps) Component() Component { return ComponentRecentBeneficiaries }

// ContinueBillPayProps renders the abandoned bill-pay reminder.
type ContinueBillPayProps struct {
	Visible bool `json:"visible"`
}

func (ContinueBillPayProps) Component() Component { return ComponentContinueBillPay }

// Section is one ordered entry of a schema. Sequence position is render
// position.
type Section struct {
	ID        string
	Component Component
	Props     Props
}

// NewSection builds a section; the component tag comes from the prop type so
// the two can never disagree.
func NewSection(id string, props Props) Section {
	return Section{ID: id, Component: props.Component(), Props: props}
}

// MarshalJSON emits the wire shape {id, component, props}.
func (s Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Component Component `json:"component"`
		Props     Props     `json:"props"`
	}{ID: s.ID, Component: s.Component, Props: s.Props})
}

// UnmarshalJSON decodes and structurally validates a section. Unknown
// component tags, missing required props, and wrong prop types are errors.
func (s *Section) UnmarshalJSON(data []byte) error {
	decoded, err := decodeSection(data)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// UISchema is an ordered, validated UI composition.
type UISchema struct {
	Version  string    `json:"version"`
	Sections []Section `json:"sections"`
}

// CountComponent returns how many sections carry the given tag.
func (u *UISchema) CountComponent(c Component) int {
	n := 0
	for _, s := range u.Sections {
		if s.Component == c {
			n++
		}
	}
	return n
}

// HasComponent reports whether at least one section carries the given tag.
func (u *UISchema) HasComponent(c Component) bool {
	return u.CountComponent(c) > 0
}

// String implements fmt.Stringer for log output.
func (u *UISchema) String() string {
	tags := make([]string, 0, len(u.Sections))
	for _, s := range u.Sections {
		tags = append(tags, string(s.Component))
	}
	return fmt.Sprintf("UISchema{v%s, %v}", u.Version, tags)
}
