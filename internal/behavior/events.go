// Package behavior defines the behavioral event model and the append-only
// event log that feeds trait derivation.
package behavior

// EventType identifies the kind of a tracked behavioral event.
type EventType string

const (
	EventView        EventType = "view"
	EventTime        EventType = "time"
	EventScroll      EventType = "scroll"
	EventClick       EventType = "click"
	EventAction      EventType = "action"
	EventSearch      EventType = "search"
	EventJourney     EventType = "journey"
	EventBalanceSeen EventType = "balance_seen"
)

// knownEventTypes is the closed set of event kinds the log accepts.
var knownEventTypes = map[EventType]bool{
	EventView:        true,
	EventTime:        true,
	EventScroll:      true,
	EventClick:       true,
	EventAction:      true,
	EventSearch:      true,
	EventJourney:     true,
	EventBalanceSeen: true,
}

// ActionID identifies a banking quick action.
type ActionID string

const (
	ActionTransfer    ActionID = "TRANSFER"
	ActionPayBill     ActionID = "PAY_BILL"
	ActionFX          ActionID = "FX"
	ActionOpenSavings ActionID = "OPEN_SAVINGS"
)

// AllActions is the default quick-action ordering.
var AllActions = []ActionID{ActionTransfer, ActionPayBill, ActionFX, ActionOpenSavings}

// KnownAction reports whether id is one of the closed action set.
func KnownAction(id ActionID) bool {
	switch id {
	case ActionTransfer, ActionPayBill, ActionFX, ActionOpenSavings:
		return true
	}
	return false
}

// JourneyID identifies a multi-step flow marker.
type JourneyID string

const (
	JourneyBillPayStarted   JourneyID = "BILLPAY_STARTED"
	JourneyBillPayCancelled JourneyID = "BILLPAY_CANCELLED"
	JourneyBillPayCompleted JourneyID = "BILLPAY_COMPLETED"
)

// Event is a single tracked behavioral event. Which fields are meaningful
// depends on Type; unused fields stay at their zero value. The log is
// append-order only - timestamps are client-reported and not guaranteed
// to be monotonic.
//
// The TargetID field carries the click target for click events and the
// JourneyID marker for journey events (they share the "id" wire field).
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  int64     `json:"timestamp"` // epoch milliseconds
	Path       string    `json:"path,omitempty"`
	DurationMS int64     `json:"ms,omitempty"`
	ScrollPct  int       `json:"pct,omitempty"`
	TargetID   string    `json:"id,omitempty"`
	Action     ActionID  `json:"name,omitempty"`
	Term       string    `json:"term,omitempty"`
}

// Journey returns the journey marker for journey events.
func (e Event) Journey() JourneyID {
	return JourneyID(e.TargetID)
}

// KnownType reports whether the event carries a recognized type tag.
// Events with unknown types are rejected at the log boundary; the deriver
// additionally ignores anything it does not understand.
func (e Event) KnownType() bool {
	return knownEventTypes[e.Type]
}
