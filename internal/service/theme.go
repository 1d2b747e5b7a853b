package service

import (
	"github.com/itchan-dev/postdesk/internal/domain"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
	"github.com/itchan-dev/postdesk/internal/logger"
)

// ThemePreference is the persisted dark/light switch. Default is light.
type ThemePreference struct {
	storage KVStorage
	current domain.Theme
}

func NewThemePreference(storage KVStorage) *ThemePreference {
	return &ThemePreference{storage: storage, current: domain.ThemeLight}
}

// Load reads the "theme" slot; anything unreadable or unknown falls back to light.
func (t *ThemePreference) Load() {
	t.current = domain.ThemeLight

	raw, ok, err := t.storage.Get(ThemeKey)
	if err != nil {
		logger.Log.Warn("reading theme, using default", "error", err)
		return
	}
	if !ok {
		return
	}
	theme, valid := domain.ParseTheme(raw)
	if !valid {
		logger.Log.Warn("unknown theme in storage, using default", "value", raw)
	}
	t.current = theme
}

func (t *ThemePreference) Current() domain.Theme {
	return t.current
}

// Toggle flips the theme and persists it. A *errors.PersistWarning still comes with the new theme.
func (t *ThemePreference) Toggle() (domain.Theme, error) {
	t.current = t.current.Toggle()
	if err := t.storage.Set(ThemeKey, string(t.current)); err != nil {
		logger.Log.Warn("persisting theme failed, keeping in-memory value", "error", err)
		return t.current, &internal_errors.PersistWarning{Key: ThemeKey, Err: err}
	}
	return t.current, nil
}
