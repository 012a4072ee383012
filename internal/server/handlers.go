package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/adaptivebank/genui/internal/behavior"
	"github.com/adaptivebank/genui/internal/composer"
	"github.com/adaptivebank/genui/internal/events"
	"github.com/adaptivebank/genui/internal/profile"
	"github.com/adaptivebank/genui/internal/traits"
)

// Handlers holds the API endpoint handlers.
type Handlers struct {
	log         zerolog.Logger
	eventRepo   *behavior.Repository
	profileRepo *profile.Repository
	composer    *composer.Service
	bus         *events.Bus
}

// HandlersConfig holds handler dependencies.
type HandlersConfig struct {
	Log         zerolog.Logger
	EventRepo   *behavior.Repository
	ProfileRepo *profile.Repository
	Composer    *composer.Service
	EventBus    *events.Bus
}

// NewHandlers creates the API handlers.
func NewHandlers(cfg HandlersConfig) *Handlers {
	return &Handlers{
		log:         cfg.Log.With().Str("component", "handlers").Logger(),
		eventRepo:   cfg.EventRepo,
		profileRepo: cfg.ProfileRepo,
		composer:    cfg.Composer,
		bus:         cfg.EventBus,
	}
}

// HandleHealth handles GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleTrackEvent handles POST /api/events
// Events are dropped silently (204) when tracking consent is absent.
func (h *Handlers) HandleTrackEvent(w http.ResponseWriter, r *http.Request) {
	var event behavior.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	if !event.KnownType() {
		h.writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	consent, err := h.profileRepo.Consent()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read consent")
		h.writeError(w, http.StatusInternalServerError, "failed to read consent")
		return
	}
	if !consent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.eventRepo.Append(event); err != nil {
		h.log.Error().Err(err).Msg("Failed to append event")
		h.writeError(w, http.StatusInternalServerError, "failed to store event")
		return
	}

	h.bus.Publish(&events.Event{
		Type:   events.TrackedEventAppended,
		Module: "behavior",
		Data:   map[string]any{"event_type": string(event.Type)},
	})

	w.WriteHeader(http.StatusAccepted)
}

// HandleListEvents handles GET /api/events
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	eventList, err := h.eventRepo.ReadAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read events")
		h.writeError(w, http.StatusInternalServerError, "failed to read events")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"events": eventList,
		"count":  len(eventList),
	})
}

// HandleClearEvents handles DELETE /api/events
func (h *Handlers) HandleClearEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.eventRepo.Clear(); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear events")
		h.writeError(w, http.StatusInternalServerError, "failed to clear events")
		return
	}

	h.composer.ClearCache()
	h.bus.Publish(&events.Event{Type: events.EventsCleared, Module: "behavior"})
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleGetTraits handles GET /api/traits
func (h *Handlers) HandleGetTraits(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.composer.CachedTraits())
}

// HandleGetLayout handles GET /api/layout
// Always returns a valid schema; failures degrade to the rule engine.
func (h *Handlers) HandleGetLayout(w http.ResponseWriter, r *http.Request) {
	result := h.composer.Compose(r.Context())

	h.bus.Publish(&events.Event{
		Type:   events.LayoutComposed,
		Module: "composer",
		Data: map[string]any{
			"source":   result.Source,
			"sections": len(result.Schema.Sections),
		},
	})

	h.writeJSON(w, http.StatusOK, result)
}

// HandleGetPreferences handles GET /api/preferences
func (h *Handlers) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.profileRepo.GetPreferences()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read preferences")
		h.writeError(w, http.StatusInternalServerError, "failed to read preferences")
		return
	}
	h.writeJSON(w, http.StatusOK, prefs)
}

// HandleUpdatePreferences handles PUT /api/preferences
// Only fields present in the payload are updated.
func (h *Handlers) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var update traits.Preferences
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid preferences payload")
		return
	}

	merged, err := h.profileRepo.SetPreferences(update)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update preferences")
		h.writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}

	h.bus.Publish(&events.Event{Type: events.PreferencesChanged, Module: "profile"})
	h.writeJSON(w, http.StatusOK, merged)
}

// HandleGetConsent handles GET /api/consent
func (h *Handlers) HandleGetConsent(w http.ResponseWriter, r *http.Request) {
	consent, err := h.profileRepo.Consent()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read consent")
		h.writeError(w, http.StatusInternalServerError, "failed to read consent")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"granted": consent})
}

// HandleUpdateConsent handles PUT /api/consent
// Revoking consent also clears the event log.
func (h *Handlers) HandleUpdateConsent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Granted *bool `json:"granted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Granted == nil {
		h.writeError(w, http.StatusBadRequest, "granted field is required")
		return
	}

	if err := h.profileRepo.SetConsent(*payload.Granted); err != nil {
		h.log.Error().Err(err).Msg("Failed to update consent")
		h.writeError(w, http.StatusInternalServerError, "failed to update consent")
		return
	}

	if !*payload.Granted {
		if err := h.eventRepo.Clear(); err != nil {
			h.log.Error().Err(err).Msg("Failed to clear events after consent revocation")
			h.writeError(w, http.StatusInternalServerError, "failed to clear events")
			return
		}
		h.composer.ClearCache()
	}

	h.bus.Publish(&events.Event{
		Type:   events.ConsentChanged,
		Module: "profile",
		Data:   map[string]any{"granted": *payload.Granted},
	})

	h.writeJSON(w, http.StatusOK, map[string]bool{"granted": *payload.Granted})
}

// HandleReset handles POST /api/reset
// Wipes the event log and all profile state.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.eventRepo.Clear(); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear events during reset")
		h.writeError(w, http.StatusInternalServerError, "failed to reset")
		return
	}
	if err := h.profileRepo.Reset(); err != nil {
		h.log.Error().Err(err).Msg("Failed to reset profile")
		h.writeError(w, http.StatusInternalServerError, "failed to reset")
		return
	}

	h.composer.ClearCache()
	h.bus.Publish(&events.Event{Type: events.ProfileReset, Module: "profile"})
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// HandleDebugStats handles GET /api/debug/stats
func (h *Handlers) HandleDebugStats(w http.ResponseWriter, r *http.Request) {
	eventList, err := h.eventRepo.ReadAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read events for stats")
		h.writeError(w, http.StatusInternalServerError, "failed to read events")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"stats":        behavior.ComputeStats(eventList),
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
