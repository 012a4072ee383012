// Package layout is the rule-based fallback engine: a pure, total mapping
// from a trait snapshot to an ordered UI schema. Section order below is
// render order. All thresholds are contractual values, not tunables.
package layout

import (
	"strings"

	"github.com/adaptivebank/genui/internal/behavior"
	"github.com/adaptivebank/genui/internal/traits"
	"github.com/adaptivebank/genui/internal/uischema"
)

const (
	heroExplorerThreshold = 0.5
	heroFXThreshold       = 0.4
	heroTransferThreshold = 0.4

	accountCardExplorerThreshold = 0.3
	accountCardTransferThreshold = 0.4

	historyExplorerThreshold = 0.2
	historyCompactThreshold  = 0.5

	fxShowAffinityThreshold   = 0.2
	fxExpandAffinityThreshold = 0.4
	fxExpandSearchCount       = 2

	beneficiariesTransferThreshold = 0.3

	offersExplorerThreshold = 0.5

	utilitiesPathFragment = "/payments/utilities"
	savingsPathFragment   = "/savings"
	offersPathFragment    = "/offers"
	exchangeTermFragment  = "exchange"
)

// mockAliases stands in for a real beneficiary alias store.
var mockAliases = []string{"Alias-A", "Alias-B"}

// ChooseLayout maps a trait snapshot to an ordered UI schema. It is pure
// and deterministic: the same snapshot always yields a structurally
// identical schema, and the result always validates.
func ChooseLayout(t traits.UserTraits) *uischema.UISchema {
	sections := make([]uischema.Section, 0, uischema.MaxSections)

	sections = append(sections, uischema.NewSection("hero", heroProps(t)))

	if t.ExplorerScore > accountCardExplorerThreshold || t.TransferAffinity > accountCardTransferThreshold {
		sections = append(sections, uischema.NewSection("account", uischema.AccountCardProps{
			AccountType: "checking",
		}))
	}

	if t.IncompleteBillPay != nil {
		sections = append(sections, uischema.NewSection("continue-billpay", uischema.ContinueBillPayProps{
			Visible: true,
		}))
	}

	sections = append(sections, uischema.NewSection("actions", uischema.ActionGridProps{
		Actions: buildActionOrder(t),
	}))

	if len(t.TopActions) > 0 || t.ExplorerScore > historyExplorerThreshold {
		sections = append(sections, uischema.NewSection("transactions", uischema.TransactionHistoryProps{
			Compact: t.ExplorerScore < historyCompactThreshold,
		}))
	}

	if shouldShowFX(t) {
		sections = append(sections, uischema.NewSection("fx-rates", uischema.FXRatesProps{
			Expanded: shouldExpandFX(t),
		}))
	}

	sections = append(sections, uischema.NewSection("balances", uischema.BalancesProps{}))

	if t.TransferAffinity > beneficiariesTransferThreshold {
		sections = append(sections, uischema.NewSection("recent-beneficiaries", uischema.RecentBeneficiariesProps{
			Aliases: mockAliases,
		}))
	}

	if shouldShowOffers(t) {
		sections = append(sections, uischema.NewSection("offers", uischema.OffersCardProps{
			Title: offersTitle.forLocale(t.Locale),
			Body:  offersBody.forLocale(t.Locale),
			CTA:   &uischema.OfferCTA{Text: offersCTA.forLocale(t.Locale), ActionID: behavior.ActionOpenSavings},
		}))
	}

	return &uischema.UISchema{
		Version:  uischema.Version,
		Sections: capSections(sections),
	}
}

// heroProps picks the greeting tier. First matching tier wins.
func heroProps(t traits.UserTraits) uischema.HeroCardProps {
	tier := heroTierDefault
	switch {
	case t.ExplorerScore > heroExplorerThreshold:
		tier = heroTierExplorer
	case t.FXAffinity > heroFXThreshold:
		tier = heroTierFX
	case t.TransferAffinity > heroTransferThreshold:
		tier = heroTierTransfer
	}

	c := heroCopyByTier[tier]
	return uischema.HeroCardProps{
		Title:    c.title.forLocale(t.Locale),
		Subtitle: c.subtitle.forLocale(t.Locale),
	}
}

// buildActionOrder ranks the quick actions. Priority: a recent utilities
// visit forces PAY_BILL first; otherwise ranked top actions lead; otherwise
// the fixed default order.
func buildActionOrder(t traits.UserTraits) []uischema.ActionItem {
	var ordered []behavior.ActionID

	switch {
	case pathsContain(t.LastPaths, utilitiesPathFragment):
		ordered = append([]behavior.ActionID{behavior.ActionPayBill},
			remaining([]behavior.ActionID{behavior.ActionPayBill})...)
	case len(t.TopActions) > 0:
		ordered = append(append([]behavior.ActionID{}, t.TopActions...),
			remaining(t.TopActions)...)
	default:
		ordered = behavior.AllActions
	}

	items := make([]uischema.ActionItem, 0, len(ordered))
	for _, id := range ordered {
		items = append(items, uischema.ActionItem{
			Label:    actionLabels[id].forLocale(t.Locale),
			ActionID: id,
		})
	}
	return items
}

// remaining returns the default-order actions not already placed.
func remaining(placed []behavior.ActionID) []behavior.ActionID {
	isPlaced := make(map[behavior.ActionID]bool, len(placed))
	for _, id := range placed {
		isPlaced[id] = true
	}
	rest := make([]behavior.ActionID, 0, len(behavior.AllActions))
	for _, id := range behavior.AllActions {
		if !isPlaced[id] {
			rest = append(rest, id)
		}
	}
	return rest
}

func shouldShowFX(t traits.UserTraits) bool {
	return t.FXAffinity > fxShowAffinityThreshold || countExchangeSearches(t) > 0
}

func shouldExpandFX(t traits.UserTraits) bool {
	return countExchangeSearches(t) >= fxExpandSearchCount || t.FXAffinity > fxExpandAffinityThreshold
}

// countExchangeSearches counts distinct search-term records containing
// "exchange". Repeat searches of the same term aggregate into one record
// and count once.
func countExchangeSearches(t traits.UserTraits) int {
	n := 0
	for _, s := range t.SearchTerms {
		if strings.Contains(s.Term, exchangeTermFragment) {
			n++
		}
	}
	return n
}

func shouldShowOffers(t traits.UserTraits) bool {
	return t.ExplorerScore > offersExplorerThreshold ||
		pathsContain(t.LastPaths, savingsPathFragment) ||
		pathsContain(t.LastPaths, offersPathFragment)
}

func pathsContain(paths []string, fragment string) bool {
	for _, p := range paths {
		if strings.Contains(p, fragment) {
			return true
		}
	}
	return false
}

// capSections enforces the wire cap. The rules above can emit nine
// candidates in the worst case; when that happens the lowest-priority
// optional sections are dropped, OffersCard first, then
// RecentBeneficiaries. Dropping is deterministic so the round-trip
// guarantee (engine output always validates) holds for every snapshot.
func capSections(sections []uischema.Section) []uischema.Section {
	dropOrder := []uischema.Component{
		uischema.ComponentOffersCard,
		uischema.ComponentRecentBeneficiaries,
	}

	for _, victim := range dropOrder {
		if len(sections) <= uischema.MaxSections {
			break
		}
		for i := len(sections) - 1; i >= 0; i-- {
			if sections[i].Component == victim {
				sections = append(sections[:i], sections[i+1:]...)
				break
			}
		}
	}
	return sections
}
