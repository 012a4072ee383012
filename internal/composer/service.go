// Package composer orchestrates the composition pipeline: read the event
// log, derive traits, obtain a schema (external generator or rule engine)
// and validate it. No error on this path reaches the user - the worst case
// is the rule engine over default traits.
package composer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adaptivebank/genui/internal/behavior"
	"github.com/adaptivebank/genui/internal/layout"
	"github.com/adaptivebank/genui/internal/traits"
	"github.com/adaptivebank/genui/internal/uischema"
)

// Schema sources reported on a composition result.
const (
	SourceRules = "rules"
	SourceLLM   = "llm"
)

// snapshotTTL bounds how long a cached trait snapshot may serve read
// surfaces before a fresh derivation is forced.
const snapshotTTL = 30 * time.Second

// EventSource is the event log read contract.
type EventSource interface {
	ReadAll() ([]behavior.Event, error)
}

// PreferenceSource supplies the persisted explicit preferences.
type PreferenceSource interface {
	GetPreferences() (traits.Preferences, error)
}

// Result is one full composition: the validated schema, the snapshot it was
// derived from, and which source produced it.
type Result struct {
	Schema *uischema.UISchema `json:"schema"`
	Traits traits.UserTraits  `json:"traits"`
	Source string             `json:"source"`
}

// Service runs the composition pipeline.
type Service struct {
	events    EventSource
	prefs     PreferenceSource
	generator Generator // nil disables the external path entirely
	cache     *traits.Cache
	langHint  string
	now       func() time.Time
	log       zerolog.Logger
}

// Config holds the service dependencies. Now is injectable for tests and
// defaults to time.Now.
type Config struct {
	Events    EventSource
	Prefs     PreferenceSource
	Generator Generator
	Cache     *traits.Cache
	LangHint  string
	Now       func() time.Time
	Log       zerolog.Logger
}

// New creates a composition service.
func New(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		events:    cfg.Events,
		prefs:     cfg.Prefs,
		generator: cfg.Generator,
		cache:     cfg.Cache,
		langHint:  cfg.LangHint,
		now:       now,
		log:       cfg.Log.With().Str("component", "composer").Logger(),
	}
}

// Compose runs one full pipeline pass. It always returns a valid schema:
// storage failures degrade to default traits and generator failures fall
// back to the rule engine.
func (s *Service) Compose(ctx context.Context) Result {
	t := s.DeriveTraits()

	if schema, ok := s.tryGenerator(ctx, t); ok {
		return Result{Schema: schema, Traits: t, Source: SourceLLM}
	}

	return Result{Schema: layout.ChooseLayout(t), Traits: t, Source: SourceRules}
}

// DeriveTraits reads the log and derives a fresh snapshot. A failing read
// degrades to an empty log rather than propagating. The snapshot is
// persisted to the cache best-effort for cheap read surfaces.
func (s *Service) DeriveTraits() traits.UserTraits {
	events, err := s.events.ReadAll()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read event log, deriving from empty log")
		events = nil
	}

	prefs, err := s.prefs.GetPreferences()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read preferences, using defaults")
		prefs = traits.Preferences{}
	}

	t := traits.Derive(events, prefs, s.langHint, s.now())

	if s.cache != nil {
		if err := s.cache.Store(t, snapshotTTL); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache trait snapshot")
		}
	}

	return t
}

// ClearCache drops the cached snapshot so the next read derives fresh.
// Called when the underlying log or profile state is wiped.
func (s *Service) ClearCache() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear trait snapshot cache")
	}
}

// CachedTraits serves the snapshot cache, deriving fresh on a miss.
func (s *Service) CachedTraits() traits.UserTraits {
	if s.cache != nil {
		if cached, err := s.cache.GetIfFresh(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to read trait snapshot cache")
		} else if cached != nil {
			return *cached
		}
	}
	return s.DeriveTraits()
}

// tryGenerator runs the single-attempt external path: opted in, generated,
// validated, and policy-checked - or not used at all.
func (s *Service) tryGenerator(ctx context.Context, t traits.UserTraits) (*uischema.UISchema, bool) {
	if s.generator == nil {
		return nil, false
	}

	prefs, err := s.prefs.GetPreferences()
	if err != nil || !prefs.LLMEnabled() {
		return nil, false
	}

	raw, err := s.generator.GenerateSchema(ctx, t)
	if err != nil {
		s.log.Warn().Err(err).Msg("External generator failed, falling back to rules")
		return nil, false
	}

	schema, err := uischema.Validate(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("External schema rejected by validator, falling back to rules")
		return nil, false
	}

	if err := checkPolicy(schema); err != nil {
		s.log.Warn().Err(err).Msg("External schema rejected by controller policy, falling back to rules")
		return nil, false
	}

	return schema, true
}
