package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/adaptivebank/genui/internal/behavior"
	"github.com/adaptivebank/genui/internal/composer"
	"github.com/adaptivebank/genui/internal/events"
	"github.com/adaptivebank/genui/internal/profile"
	"github.com/adaptivebank/genui/internal/traits"
	"github.com/adaptivebank/genui/internal/uischema"
)

type testEnv struct {
	handlers *Handlers
	events   *behavior.Repository
	profile  *profile.Repository
	bus      *events.Bus
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	behaviorDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	behaviorDB.SetMaxOpenConns(1)
	t.Cleanup(func() { behaviorDB.Close() })
	_, err = behaviorDB.Exec(behavior.Schema)
	require.NoError(t, err)

	profileDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	profileDB.SetMaxOpenConns(1)
	t.Cleanup(func() { profileDB.Close() })
	_, err = profileDB.Exec(profile.Schema)
	require.NoError(t, err)

	eventRepo := behavior.NewRepository(behaviorDB)
	profileRepo := profile.NewRepository(profileDB)
	bus := events.NewBus()

	composerService := composer.New(composer.Config{
		Events:   eventRepo,
		Prefs:    profileRepo,
		LangHint: "en",
		Log:      zerolog.Nop(),
	})

	handlers := NewHandlers(HandlersConfig{
		Log:         zerolog.Nop(),
		EventRepo:   eventRepo,
		ProfileRepo: profileRepo,
		Composer:    composerService,
		EventBus:    bus,
	})

	return &testEnv{
		handlers: handlers,
		events:   eventRepo,
		profile:  profileRepo,
		bus:      bus,
	}
}

func TestHandleTrackEvent_RequiresConsent(t *testing.T) {
	env := setupTestEnv(t)

	body := `{"type": "view", "timestamp": 1000, "path": "/home"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.handlers.HandleTrackEvent(rec, req)

	// Without consent the event is dropped silently.
	assert.Equal(t, http.StatusNoContent, rec.Code)
	count, err := env.events.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandleTrackEvent_StoresWithConsent(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.profile.SetConsent(true))

	var published []*events.Event
	env.bus.SubscribeAll(func(e *events.Event) { published = append(published, e) })

	body := `{"type": "action", "timestamp": 1000, "name": "FX"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.handlers.HandleTrackEvent(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	stored, err := env.events.ReadAll()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, behavior.ActionFX, stored[0].Action)

	require.Len(t, published, 1)
	assert.Equal(t, events.TrackedEventAppended, published[0].Type)
}

func TestHandleTrackEvent_RejectsBadPayloads(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.profile.SetConsent(true))

	for _, body := range []string{
		"not json",
		`{"type": "telemetry", "timestamp": 1}`,
		`{}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
		rec := httptest.NewRecorder()
		env.handlers.HandleTrackEvent(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHandleListEvents(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.events.Append(behavior.Event{Type: behavior.EventView, Timestamp: 1, Path: "/home"}))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	env.handlers.HandleListEvents(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Events []behavior.Event `json:"events"`
		Count  int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Events, 1)
	assert.Equal(t, "/home", response.Events[0].Path)
}

func TestHandleClearEvents(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.events.Append(behavior.Event{Type: behavior.EventView, Timestamp: 1, Path: "/home"}))

	req := httptest.NewRequest(http.MethodDelete, "/api/events", nil)
	rec := httptest.NewRecorder()
	env.handlers.HandleClearEvents(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	count, err := env.events.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandleGetLayout_AlwaysReturnsValidSchema(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/layout", nil)
	rec := httptest.NewRecorder()
	env.handlers.HandleGetLayout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Schema json.RawMessage   `json:"schema"`
		Traits traits.UserTraits `json:"traits"`
		Source string            `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, composer.SourceRules, result.Source)

	schema, err := uischema.Validate(result.Schema)
	require.NoError(t, err)
	assert.Equal(t, 1, schema.CountComponent(uischema.ComponentBalances))
	assert.Equal(t, 1, schema.CountComponent(uischema.ComponentActionGrid))
}

func TestHandleGetTraits_DerivesFromLog(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.events.Append(behavior.Event{
		Type:      behavior.EventAction,
		Action:    behavior.ActionFX,
		Timestamp: time.Now().UnixMilli(),
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/traits", nil)
	rec := httptest.NewRecorder()
	env.handlers.HandleGetTraits(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var derived traits.UserTraits
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &derived))
	assert.Equal(t, 1.0, derived.FXAffinity)
}

func TestPreferencesRoundTrip(t *testing.T) {
	env := setupTestEnv(t)

	body := `{"locale": "tr", "darkMode": true}`
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.handlers.HandleUpdatePreferences(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/preferences", nil)
	rec = httptest.NewRecorder()
	env.handlers.HandleGetPreferences(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs traits.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	require.NotNil(t, prefs.Locale)
	assert.Equal(t, traits.LocaleTR, *prefs.Locale)
	require.NotNil(t, prefs.DarkMode)
	assert.True(t, *prefs.DarkMode)
}

func TestHandleUpdateConsent_RevocationClearsLog(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.profile.SetConsent(true))
	require.NoError(t, env.events.Append(behavior.Event{Type: behavior.EventView, Timestamp: 1, Path: "/home"}))

	req := httptest.NewRequest(http.MethodPut, "/api/consent", strings.NewReader(`{"granted": false}`))
	rec := httptest.NewRecorder()
	env.handlers.HandleUpdateConsent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	granted, err := env.profile.Consent()
	require.NoError(t, err)
	assert.False(t, granted)

	count, err := env.events.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandleUpdateConsent_RequiresGrantedField(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodPut, "/api/consent", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	env.handlers.HandleUpdateConsent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReset_WipesLogAndProfile(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.profile.SetConsent(true))
	require.NoError(t, env.events.Append(behavior.Event{Type: behavior.EventView, Timestamp: 1, Path: "/home"}))

	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	rec := httptest.NewRecorder()
	env.handlers.HandleReset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	count, err := env.events.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	granted, err := env.profile.Consent()
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestHandleDebugStats(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.events.Append(behavior.Event{Type: behavior.EventView, Timestamp: 1, Path: "/home"}))
	require.NoError(t, env.events.Append(behavior.Event{Type: behavior.EventTime, Timestamp: 2, DurationMS: 500}))

	req := httptest.NewRequest(http.MethodGet, "/api/debug/stats", nil)
	rec := httptest.NewRecorder()
	env.handlers.HandleDebugStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Stats behavior.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Stats.TotalEvents)
	assert.Equal(t, 1, response.Stats.DistinctPaths)
	assert.Equal(t, 500.0, response.Stats.MeanDwellMS)
}
