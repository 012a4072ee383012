package composer

import (
	"encoding/json"
	"fmt"

	"github.com/adaptivebank/genui/internal/traits"
)

// systemPrompt pins the generator to the UISchema wire contract. The model
// output is never trusted: everything it returns goes through the same
// validator as the rule engine.
const systemPrompt = `You are a UI layout composer for a modern banking app. Your task is to generate a personalized UI schema based on user behavior and preferences.

# UISchema Contract

type ActionId = "TRANSFER" | "PAY_BILL" | "FX" | "OPEN_SAVINGS";

type UISchema = {
  version: "1.0",
  sections: Array<
    | { id: string; component: "HeroCard"; props: { title: string; subtitle?: string } }
    | { id: string; component: "AccountCard"; props: { accountType?: "checking" | "savings" } }
    | { id: string; component: "ActionGrid"; props: { actions: { label: string; actionId: ActionId }[] } }
    | { id: string; component: "TransactionHistory"; props: { compact?: boolean } }
    | { id: string; component: "FXRates"; props: { expanded?: boolean } }
    | { id: string; component: "Balances"; props: {} }
    | { id: string; component: "OffersCard"; props: { title: string; body: string; cta?: { text: string; actionId: ActionId } } }
    | { id: string; component: "RecentBeneficiaries"; props: { aliases: string[] } }
    | { id: string; component: "ContinueBillPay"; props: { visible: boolean } }
  >;
};

# Constraints

1. JSON only, at most 8 sections
2. Always include "Balances" and "ActionGrid" components
3. Only use allowlisted ActionIds: TRANSFER, PAY_BILL, FX, OPEN_SAVINGS
4. Locale: if TR use Turkish copy; else English
5. Neutral copy (no fees/rates/APR/claims), no PII
6. Aliases only for beneficiaries (e.g., "Alias-A", "Alias-B")

# Layout Rules

1. If fxAffinity > 0.4 include FXRates near top; expanded=true if at least 2 distinct search terms contain "exchange"
2. If transferAffinity > 0.4 prioritize TRANSFER or PAY_BILL based on topActions
3. If lastPaths contains /payments/utilities put PAY_BILL first in ActionGrid
4. If aliases exist include RecentBeneficiaries with 2-3 masked strings
5. If explorerScore is high or a savings path was visited include OffersCard (Auto-Save) with an OPEN_SAVINGS CTA
6. If incompleteBillPay is set include ContinueBillPay with visible=true
7. Respect prefersDense; keep copy concise
8. Obey locale (TR/EN)

# Self-Check

Before returning:
- Valid JSON?
- At most 8 sections?
- Includes Balances and ActionGrid?
- All ActionIds from allowlist?
- Locale matches user?
- No PII or hard-coded rates?

Return JSON only, no markdown code blocks.`

// buildUserPrompt serializes the behavioral portion of the snapshot for the
// generator. Only derived aggregates leave the process, never raw events.
func buildUserPrompt(t traits.UserTraits) (string, error) {
	searchTerms := t.SearchTerms
	if len(searchTerms) > 5 {
		searchTerms = searchTerms[:5]
	}

	behaviorPayload := map[string]any{
		"fxAffinity":        t.FXAffinity,
		"transferAffinity":  t.TransferAffinity,
		"explorerScore":     t.ExplorerScore,
		"topActions":        t.TopActions,
		"lastPaths":         t.LastPaths,
		"searchTerms":       searchTerms,
		"incompleteBillPay": t.IncompleteBillPay,
	}
	prefsPayload := map[string]any{
		"locale":       t.Locale,
		"prefersDense": t.PrefersDense,
		"darkMode":     t.DarkMode,
	}

	behaviorJSON, err := json.MarshalIndent(behaviorPayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode behavior payload: %w", err)
	}
	prefsJSON, err := json.MarshalIndent(prefsPayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode preference payload: %w", err)
	}

	return fmt.Sprintf(`Generate a personalized UI schema for this user:

# User Traits
%s

# User Preferences
%s

Return a valid UISchema JSON object following all constraints and rules.`, behaviorJSON, prefsJSON), nil
}
