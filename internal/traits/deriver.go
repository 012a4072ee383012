package traits

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/adaptivebank/genui/internal/behavior"
)

// Derivation constants. The windows and thresholds are contractual: layout
// behavior depends on them bit-for-bit.
const (
	recencyWindow = 30 * 24 * time.Hour // all event kinds except search
	searchWindow  = 7 * 24 * time.Hour  // search events only
	billPayWindow = 24 * time.Hour      // abandoned journey reminder lifetime

	explorerNormalization = 10 // distinct view paths for a full explorer score
	lastPathsWindow       = 10 // view events considered for lastPaths
	maxLastPaths          = 5
	maxTopActions         = 3
	maxSearchTerms        = 10
	actionDecayDays       = 7 // exp(-age/7d), half-life ~4.85 days
)

// Derive computes a fresh trait snapshot from the full event log.
//
// It is deterministic for a given (events, prefs, langHint, now) and never
// fails: malformed or unknown events simply contribute nothing. langHint is
// the platform-reported language (e.g. "tr-TR") used only when no explicit
// locale preference exists.
func Derive(events []behavior.Event, prefs Preferences, langHint string, now time.Time) UserTraits {
	t := Default()

	nowMS := now.UnixMilli()
	recencyCutoff := nowMS - recencyWindow.Milliseconds()
	searchCutoff := nowMS - searchWindow.Milliseconds()

	var (
		actionEvents  []behavior.Event
		viewEvents    []behavior.Event
		searchEvents  []behavior.Event
		journeyEvents []behavior.Event
	)
	var lastBalanceSeen int64

	for _, e := range events {
		if e.Timestamp < recencyCutoff || e.Timestamp > nowMS+recencyWindow.Milliseconds() {
			// Outside the window, or a timestamp too far in the future to
			// be anything but garbage.
			continue
		}
		switch e.Type {
		case behavior.EventAction:
			if behavior.KnownAction(e.Action) {
				actionEvents = append(actionEvents, e)
			}
		case behavior.EventView:
			if e.Path != "" {
				viewEvents = append(viewEvents, e)
			}
		case behavior.EventSearch:
			if e.Term != "" && e.Timestamp >= searchCutoff {
				searchEvents = append(searchEvents, e)
			}
		case behavior.EventJourney:
			journeyEvents = append(journeyEvents, e)
		case behavior.EventBalanceSeen:
			lastBalanceSeen = e.Timestamp
		}
	}

	// Affinities: fraction of recent actions per class. The denominator
	// floors at 1 so an empty action history yields 0, not NaN.
	var fxCount, transferCount int
	for _, e := range actionEvents {
		switch e.Action {
		case behavior.ActionFX:
			fxCount++
		case behavior.ActionTransfer:
			transferCount++
		}
	}
	total := len(actionEvents)
	if total == 0 {
		total = 1
	}
	t.FXAffinity = clamp01(float64(fxCount) / float64(total))
	t.TransferAffinity = clamp01(float64(transferCount) / float64(total))

	// Explorer score: breadth of distinct view paths, clamped at 1.
	distinct := make(map[string]bool)
	for _, e := range viewEvents {
		distinct[e.Path] = true
	}
	t.ExplorerScore = clamp01(float64(len(distinct)) / float64(explorerNormalization))

	t.LastPaths = lastDistinctPaths(viewEvents)
	t.TopActions = rankActions(actionEvents, now)

	if lastBalanceSeen > 0 {
		ts := lastBalanceSeen
		t.LastBalanceSeen = &ts
	}

	t.IncompleteBillPay = incompleteBillPay(journeyEvents, nowMS)
	t.SearchTerms = aggregateSearchTerms(searchEvents)

	t.Locale = resolveLocale(prefs, langHint)
	if prefs.PrefersDense != nil {
		t.PrefersDense = *prefs.PrefersDense
	}
	if prefs.DarkMode != nil {
		t.DarkMode = *prefs.DarkMode
	}

	return t
}

// lastDistinctPaths returns up to maxLastPaths distinct paths from the most
// recent lastPathsWindow view events, most recent first. Deduplication keeps
// the latest occurrence of each path.
func lastDistinctPaths(viewEvents []behavior.Event) []string {
	start := len(viewEvents) - lastPathsWindow
	if start < 0 {
		start = 0
	}
	window := viewEvents[start:]

	paths := make([]string, 0, maxLastPaths)
	seen := make(map[string]bool)
	for i := len(window) - 1; i >= 0; i-- {
		p := window[i].Path
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
		if len(paths) == maxLastPaths {
			break
		}
	}
	return paths
}

// rankActions orders action classes by recency-weighted frequency. Each
// occurrence contributes exp(-ageDays/actionDecayDays); ties resolve by
// first appearance in the log (stable sort over insertion order).
func rankActions(actionEvents []behavior.Event, now time.Time) []behavior.ActionID {
	weights := make(map[behavior.ActionID]float64)
	order := make([]behavior.ActionID, 0, 4)

	for _, e := range actionEvents {
		ageDays := float64(now.UnixMilli()-e.Timestamp) / float64((24 * time.Hour).Milliseconds())
		if _, ok := weights[e.Action]; !ok {
			order = append(order, e.Action)
		}
		weights[e.Action] += math.Exp(-ageDays / actionDecayDays)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] > weights[order[j]]
	})

	if len(order) > maxTopActions {
		order = order[:maxTopActions]
	}
	return order
}

// incompleteBillPay reports an abandoned bill-pay journey: the most recent
// start marker with no completion at or after it, still inside the 24h
// reminder window. A cancellation marker deliberately does not clear the
// reminder; only completion or window expiry does.
func incompleteBillPay(journeyEvents []behavior.Event, nowMS int64) *BillPayProgress {
	var started int64
	for _, e := range journeyEvents {
		if e.Journey() == behavior.JourneyBillPayStarted && e.Timestamp > started {
			started = e.Timestamp
		}
	}
	if started == 0 || nowMS-started >= billPayWindow.Milliseconds() {
		return nil
	}
	for _, e := range journeyEvents {
		if e.Journey() == behavior.JourneyBillPayCompleted && e.Timestamp >= started {
			return nil
		}
	}
	return &BillPayProgress{Started: started}
}

// aggregateSearchTerms groups searches by exact term, keeping the top
// maxSearchTerms by count. Ordering is deterministic: count desc, then
// most recent, then term.
func aggregateSearchTerms(searchEvents []behavior.Event) []SearchTerm {
	byTerm := make(map[string]*SearchTerm)
	for _, e := range searchEvents {
		st, ok := byTerm[e.Term]
		if !ok {
			st = &SearchTerm{Term: e.Term}
			byTerm[e.Term] = st
		}
		st.Count++
		if e.Timestamp > st.LastSeen {
			st.LastSeen = e.Timestamp
		}
	}

	terms := make([]SearchTerm, 0, len(byTerm))
	for _, st := range byTerm {
		terms = append(terms, *st)
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		if terms[i].LastSeen != terms[j].LastSeen {
			return terms[i].LastSeen > terms[j].LastSeen
		}
		return terms[i].Term < terms[j].Term
	})

	if len(terms) > maxSearchTerms {
		terms = terms[:maxSearchTerms]
	}
	return terms
}

// resolveLocale applies the preference first, then the platform language
// hint ("tr" prefix selects Turkish), defaulting to English.
func resolveLocale(prefs Preferences, langHint string) Locale {
	if prefs.Locale != nil && (*prefs.Locale == LocaleEN || *prefs.Locale == LocaleTR) {
		return *prefs.Locale
	}
	if strings.HasPrefix(strings.ToLower(langHint), "tr") {
		return LocaleTR
	}
	return LocaleEN
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
