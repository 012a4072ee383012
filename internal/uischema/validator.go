package uischema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adaptivebank/genui/internal/behavior"
)

// ErrInvalidSchema is the sentinel wrapped by every validation failure.
var ErrInvalidSchema = errors.New("invalid ui schema")

// Validate parses and structurally validates a candidate schema document.
// It returns a typed schema on success and a wrapped ErrInvalidSchema on any
// structural mismatch. There is no lenient mode: a rejected document is
// discarded wholesale and the caller falls back to the rule engine.
//
// Validated rules: version must equal "1.0"; at most MaxSections sections;
// each section must match exactly one known component shape. Cross-section
// policies (such as requiring Balances) are the controller's concern.
func Validate(data []byte) (*UISchema, error) {
	var raw struct {
		Version  *string           `json:"version"`
		Sections []json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: not a schema document: %v", ErrInvalidSchema, err)
	}

	if raw.Version == nil || *raw.Version != Version {
		return nil, fmt.Errorf("%w: version must be %q", ErrInvalidSchema, Version)
	}
	if raw.Sections == nil {
		return nil, fmt.Errorf("%w: missing sections", ErrInvalidSchema)
	}
	if len(raw.Sections) > MaxSections {
		return nil, fmt.Errorf("%w: %d sections exceeds the cap of %d", ErrInvalidSchema, len(raw.Sections), MaxSections)
	}

	schema := &UISchema{Version: Version, Sections: make([]Section, 0, len(raw.Sections))}
	for i, rawSection := range raw.Sections {
		section, err := decodeSection(rawSection)
		if err != nil {
			return nil, fmt.Errorf("%w: section %d: %v", ErrInvalidSchema, i, err)
		}
		schema.Sections = append(schema.Sections, section)
	}

	return schema, nil
}

// decodeSection validates one section against the closed component set.
// Extra unknown prop keys are tolerated (and dropped); unknown component
// tags, missing required props, and wrong prop types are not.
func decodeSection(data []byte) (Section, error) {
	var envelope struct {
		ID        *string         `json:"id"`
		Component *Component      `json:"component"`
		Props     json.RawMessage `json:"props"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Section{}, fmt.Errorf("malformed section: %v", err)
	}
	if envelope.ID == nil {
		return Section{}, errors.New("missing id")
	}
	if envelope.Component == nil {
		return Section{}, errors.New("missing component")
	}
	if envelope.Props == nil {
		return Section{}, errors.New("missing props")
	}

	props, err := decodeProps(*envelope.Component, envelope.Props)
	if err != nil {
		return Section{}, err
	}

	return Section{ID: *envelope.ID, Component: *envelope.Component, Props: props}, nil
}

func decodeProps(component Component, raw json.RawMessage) (Props, error) {
	switch component {
	case ComponentHeroCard:
		var p struct {
			Title    *string `json:"title"`
			Subtitle *string `json:"subtitle"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("HeroCard props: %v", err)
		}
		if p.Title == nil {
			return nil, errors.New("HeroCard props: missing title")
		}
		out := HeroCardProps{Title: *p.Title}
		if p.Subtitle != nil {
			out.Subtitle = *p.Subtitle
		}
		return out, nil

	case ComponentAccountCard:
		var p struct {
			AccountType *string `json:"accountType"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("AccountCard props: %v", err)
		}
		out := AccountCardProps{}
		if p.AccountType != nil {
			if *p.AccountType != "checking" && *p.AccountType != "savings" {
				return nil, fmt.Errorf("AccountCard props: invalid accountType %q", *p.AccountType)
			}
			out.AccountType = *p.AccountType
		}
		return out, nil

	case ComponentActionGrid:
		var p struct {
			Actions []struct {
				Label    *string            `json:"label"`
				ActionID *behavior.ActionID `json:"actionId"`
			} `json:"actions"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("ActionGrid props: %v", err)
		}
		if p.Actions == nil {
			return nil, errors.New("ActionGrid props: missing actions")
		}
		out := ActionGridProps{Actions: make([]ActionItem, 0, len(p.Actions))}
		for i, a := range p.Actions {
			if a.Label == nil || a.ActionID == nil {
				return nil, fmt.Errorf("ActionGrid props: action %d incomplete", i)
			}
			if !behavior.KnownAction(*a.ActionID) {
				return nil, fmt.Errorf("ActionGrid props: unknown actionId %q", *a.ActionID)
			}
			out.Actions = append(out.Actions, ActionItem{Label: *a.Label, ActionID: *a.ActionID})
		}
		return out, nil

	case ComponentTransactionHistory:
		var p struct {
			Compact *bool `json:"compact"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("TransactionHistory props: %v", err)
		}
		out := TransactionHistoryProps{}
		if p.Compact != nil {
			out.Compact = *p.Compact
		}
		return out, nil

	case ComponentFXRates:
		var p struct {
			Expanded *bool `json:"expanded"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("FXRates props: %v", err)
		}
		out := FXRatesProps{}
		if p.Expanded != nil {
			out.Expanded = *p.Expanded
		}
		return out, nil

	case ComponentBalances:
		var p map[string]json.RawMessage
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("Balances props: %v", err)
		}
		return BalancesProps{}, nil

	case ComponentOffersCard:
		var p struct {
			Title *string `json:"title"`
			Body  *string `json:"body"`
			CTA   *struct {
				Text     *string            `json:"text"`
				ActionID *behavior.ActionID `json:"actionId"`
			} `json:"cta"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("OffersCard props: %v", err)
		}
		if p.Title == nil || p.Body == nil {
			return nil, errors.New("OffersCard props: missing title or body")
		}
		out := OffersCardProps{Title: *p.Title, Body: *p.Body}
		if p.CTA != nil {
			if p.CTA.Text == nil || p.CTA.ActionID == nil {
				return nil, errors.New("OffersCard props: incomplete cta")
			}
			if !behavior.KnownAction(*p.CTA.ActionID) {
				return nil, fmt.Errorf("OffersCard props: unknown cta actionId %q", *p.CTA.ActionID)
			}
			out.CTA = &OfferCTA{Text: *p.CTA.Text, ActionID: *p.CTA.ActionID}
		}
		return out, nil

	case ComponentRecentBeneficiaries:
		var p struct {
			Aliases []string `json:"aliases"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("RecentBeneficiaries props: %v", err)
		}
		if p.Aliases == nil {
			return nil, errors.New("RecentBeneficiaries props: missing aliases")
		}
		return RecentBeneficiariesProps{Aliases: p.Aliases}, nil

	case ComponentContinueBillPay:
		var p struct {
			Visible *bool `json:"visible"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("ContinueBillPay props: %v", err)
		}
		if p.Visible == nil {
			return nil, errors.New("ContinueBillPay props: missing visible")
		}
		return ContinueBillPayProps{Visible: *p.Visible}, nil

	default:
		return nil, fmt.Errorf("unknown component %q", component)
	}
}
