package uischema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaptivebank/genui/internal/behavior"
)

func validDocument() string {
	return `{
		"version": "1.0",
		"sections": [
			{"id": "hero", "component": "HeroCard", "props": {"title": "Welcome", "subtitle": "Hi"}},
			{"id": "actions", "component": "ActionGrid", "props": {"actions": [
				{"label": "Transfer", "actionId": "TRANSFER"},
				{"label": "Pay Bill", "actionId": "PAY_BILL"}
			]}},
			{"id": "balances", "component": "Balances", "props": {}}
		]
	}`
}

func TestValidate_AcceptsWellFormedDocument(t *testing.T) {
	schema, err := Validate([]byte(validDocument()))

	require.NoError(t, err)
	require.Len(t, schema.Sections, 3)
	assert.Equal(t, Version, schema.Version)
	assert.Equal(t, "hero", schema.Sections[0].ID)

	hero, ok := schema.Sections[0].Props.(HeroCardProps)
	require.True(t, ok)
	assert.Equal(t, "Welcome", hero.Title)
	assert.Equal(t, "Hi", hero.Subtitle)

	grid, ok := schema.Sections[1].Props.(ActionGridProps)
	require.True(t, ok)
	require.Len(t, grid.Actions, 2)
	assert.Equal(t, behavior.ActionTransfer, grid.Actions[0].ActionID)
}

func TestValidate_RejectsNonJSON(t *testing.T) {
	_, err := Validate([]byte("not json at all"))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestValidate_RejectsWrongVersion(t *testing.T) {
	for _, doc := range []string{
		`{"version": "2.0", "sections": []}`,
		`{"version": 1, "sections": []}`,
		`{"sections": []}`,
	} {
		_, err := Validate([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidSchema, doc)
	}
}

func TestValidate_RejectsMissingSections(t *testing.T) {
	_, err := Validate([]byte(`{"version": "1.0"}`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestValidate_AcceptsEmptySections(t *testing.T) {
	schema, err := Validate([]byte(`{"version": "1.0", "sections": []}`))
	require.NoError(t, err)
	assert.Empty(t, schema.Sections)
}

func TestValidate_RejectsTooManySections(t *testing.T) {
	sections := make([]string, 0, MaxSections+1)
	for i := 0; i <= MaxSections; i++ {
		sections = append(sections,
			fmt.Sprintf(`{"id": "s%d", "component": "Balances", "props": {}}`, i))
	}
	doc := fmt.Sprintf(`{"version": "1.0", "sections": [%s]}`, joinComma(sections))

	_, err := Validate([]byte(doc))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestValidate_RejectsUnknownComponent(t *testing.T) {
	doc := `{"version": "1.0", "sections": [
		{"id": "x", "component": "CryptoTicker", "props": {}}
	]}`

	_, err := Validate([]byte(doc))
	require.ErrorIs(t, err, ErrInvalidSchema)
	assert.Contains(t, err.Error(), "unknown component")
}

func TestValidate_RejectsMissingEnvelopeFields(t *testing.T) {
	for _, doc := range []string{
		`{"version": "1.0", "sections": [{"component": "Balances", "props": {}}]}`,
		`{"version": "1.0", "sections": [{"id": "x", "props": {}}]}`,
		`{"version": "1.0", "sections": [{"id": "x", "component": "Balances"}]}`,
	} {
		_, err := Validate([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidSchema, doc)
	}
}

func TestValidate_RejectsMissingRequiredProps(t *testing.T) {
	cases := map[string]string{
		"HeroCard without title":          `{"id": "x", "component": "HeroCard", "props": {"subtitle": "hi"}}`,
		"ActionGrid without actions":      `{"id": "x", "component": "ActionGrid", "props": {}}`,
		"ActionGrid incomplete item":      `{"id": "x", "component": "ActionGrid", "props": {"actions": [{"label": "T"}]}}`,
		"ActionGrid unknown action":       `{"id": "x", "component": "ActionGrid", "props": {"actions": [{"label": "T", "actionId": "MINE_BITCOIN"}]}}`,
		"OffersCard without body":         `{"id": "x", "component": "OffersCard", "props": {"title": "t"}}`,
		"OffersCard incomplete cta":       `{"id": "x", "component": "OffersCard", "props": {"title": "t", "body": "b", "cta": {"text": "go"}}}`,
		"Beneficiaries without aliases":   `{"id": "x", "component": "RecentBeneficiaries", "props": {}}`,
		"ContinueBillPay without visible": `{"id": "x", "component": "ContinueBillPay", "props": {}}`,
		"AccountCard bad accountType":     `{"id": "x", "component": "AccountCard", "props": {"accountType": "crypto"}}`,
	}

	for name, section := range cases {
		t.Run(name, func(t *testing.T) {
			doc := fmt.Sprintf(`{"version": "1.0", "sections": [%s]}`, section)
			_, err := Validate([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestValidate_RejectsWrongPropTypes(t *testing.T) {
	doc := `{"version": "1.0", "sections": [
		{"id": "x", "component": "TransactionHistory", "props": {"compact": "yes"}}
	]}`

	_, err := Validate([]byte(doc))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestValidate_ToleratesExtraPropKeys(t *testing.T) {
	doc := `{"version": "1.0", "sections": [
		{"id": "hero", "component": "HeroCard", "props": {"title": "Hi", "theme": "festive"}}
	]}`

	schema, err := Validate([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Hi", schema.Sections[0].Props.(HeroCardProps).Title)
}

func TestValidate_RoundTripsMarshalledSchema(t *testing.T) {
	original := &UISchema{
		Version: Version,
		Sections: []Section{
			NewSection("hero", HeroCardProps{Title: "Welcome"}),
			NewSection("actions", ActionGridProps{Actions: []ActionItem{
				{Label: "Exchange", ActionID: behavior.ActionFX},
			}}),
			NewSection("balances", BalancesProps{}),
			NewSection("offers", OffersCardProps{
				Title: "Save",
				Body:  "Monthly",
				CTA:   &OfferCTA{Text: "Go", ActionID: behavior.ActionOpenSavings},
			}),
		},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	parsed, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
