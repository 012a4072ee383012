// Package profile persists explicit user state: preferences and tracking
// consent. Everything else about the user is derived, never stored.
package profile

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/adaptivebank/genui/internal/traits"
)

// Schema is the DDL for the profile database, applied at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS profile (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const (
	keyPreferences = "preferences"
	keyConsent     = "consent"
)

// Repository stores profile state as keyed JSON values.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new profile repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetPreferences returns the persisted preferences; absent state yields the
// zero value (all fields unset).
func (r *Repository) GetPreferences() (traits.Preferences, error) {
	var raw string
	err := r.db.QueryRow(`SELECT value FROM profile WHERE key = ?`, keyPreferences).Scan(&raw)
	if err == sql.ErrNoRows {
		return traits.Preferences{}, nil
	}
	if err != nil {
		return traits.Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs traits.Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return traits.Preferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

// SetPreferences merges the given fields into the persisted preferences.
// Nil fields leave the stored value untouched.
func (r *Repository) SetPreferences(update traits.Preferences) (traits.Preferences, error) {
	current, err := r.GetPreferences()
	if err != nil {
		return traits.Preferences{}, err
	}

	if update.Locale != nil {
		current.Locale = update.Locale
	}
	if update.DarkMode != nil {
		current.DarkMode = update.DarkMode
	}
	if update.PrefersDense != nil {
		current.PrefersDense = update.PrefersDense
	}
	if update.UseLLM != nil {
		current.UseLLM = update.UseLLM
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return traits.Preferences{}, fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := r.set(keyPreferences, string(raw)); err != nil {
		return traits.Preferences{}, err
	}
	return current, nil
}

// Consent reports whether the user accepted behavioral tracking. Absent
// state means no consent.
func (r *Repository) Consent() (bool, error) {
	var raw string
	err := r.db.QueryRow(`SELECT value FROM profile WHERE key = ?`, keyConsent).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read consent: %w", err)
	}
	return raw == "true", nil
}

// SetConsent persists the consent decision.
func (r *Repository) SetConsent(granted bool) error {
	value := "false"
	if granted {
		value = "true"
	}
	return r.set(keyConsent, value)
}

// Reset wipes all profile state (preferences and consent).
func (r *Repository) Reset() error {
	if _, err := r.db.Exec(`DELETE FROM profile`); err != nil {
		return fmt.Errorf("failed to reset profile: %w", err)
	}
	return nil
}

func (r *Repository) set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO profile (key, value) VALUES (?, ?)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to store profile key %s: %w", key, err)
	}
	return nil
}
