// Package config loads, validates and persists dwmlock settings.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/policy"
)

// Built-in fallbacks.
const (
	DefaultPassword   = "dwmlock"
	DefaultBlurRadius = 12
	MaxBlurRadius     = 255
)

// Settings keys as they appear in the config file.
const (
	KeyPassword             = "password"
	KeyBlurEnabled          = "blur_enabled"
	KeyBlurRadius           = "blur_radius"
	KeyMonitorMode          = "monitor_mode"
	KeyDisableMonitors      = "disable_monitors"
	KeyMinigameAutostart    = "minigame_autostart"
	KeyTextOnAllMonitors    = "text_on_all_monitors"
	KeyDismissNotifications = "dismiss_notifications_on_startup"
	KeyOpenSettings         = "open_settings_on_startup"
)

// Defaults returns the settings used when no file exists.
func Defaults() domain.Settings {
	return domain.Settings{
		Password:        DefaultPassword,
		BlurEnabled:     true,
		BlurRadius:      DefaultBlurRadius,
		MonitorMode:     domain.BlankingCustom,
		DisableMonitors: []string{"DISPLAY2"},
	}
}

// Resolve applies per-field fallbacks: blank password, out-of-range radius,
// empty or unknown mode. A bad value in one field never resets another.
// Monitor names are canonicalized and deduplicated in order.
func Resolve(s domain.Settings) domain.Settings {
	r := s.Clone()

	if strings.TrimSpace(r.Password) == "" {
		r.Password = DefaultPassword
	}
	switch {
	case r.BlurRadius <= 0:
		r.BlurRadius = DefaultBlurRadius
	case r.BlurRadius > MaxBlurRadius:
		r.BlurRadius = MaxBlurRadius
	}
	if mode, err := policy.ParseMode(string(r.MonitorMode)); err == nil {
		r.MonitorMode = mode
	} else {
		r.MonitorMode = domain.BlankingCustom
	}

	seen := make(map[string]bool, len(r.DisableMonitors))
	names := make([]string, 0, len(r.DisableMonitors))
	for _, n := range r.DisableMonitors {
		if strings.TrimSpace(n) == "" {
			continue
		}
		c := policy.Canonicalize(n)
		if seen[c] {
			continue
		}
		seen[c] = true
		names = append(names, c)
	}
	r.DisableMonitors = names
	return r
}

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate rejects values Resolve would have to correct. Used when editing
// settings, where a typo should fail rather than be replaced.
func Validate(s domain.Settings) error {
	var errs ValidationErrors

	if _, err := policy.ParseMode(string(s.MonitorMode)); err != nil {
		errs = append(errs, ValidationError{Field: KeyMonitorMode, Message: err.Error()})
	}
	if s.BlurRadius < 0 || s.BlurRadius > MaxBlurRadius {
		errs = append(errs, ValidationError{
			Field:   KeyBlurRadius,
			Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxBlurRadius, s.BlurRadius),
		})
	}
	if s.Password == "" {
		errs = append(errs, ValidationError{Field: KeyPassword, Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Keys lists the settable keys in file order.
func Keys() []string {
	return []string{
		KeyPassword,
		KeyBlurEnabled,
		KeyBlurRadius,
		KeyMonitorMode,
		KeyDisableMonitors,
		KeyMinigameAutostart,
		KeyTextOnAllMonitors,
		KeyDismissNotifications,
		KeyOpenSettings,
	}
}

// Set parses value and assigns it to the named key.
// disable_monitors takes a comma-separated list; an empty value clears it.
func Set(s *domain.Settings, key, value string) error {
	value = strings.TrimSpace(value)

	boolField := map[string]*bool{
		KeyBlurEnabled:          &s.BlurEnabled,
		KeyMinigameAutostart:    &s.MinigameAutostart,
		KeyTextOnAllMonitors:    &s.TextOnAllMonitors,
		KeyDismissNotifications: &s.DismissNotificationsOnStartup,
		KeyOpenSettings:         &s.OpenSettingsOnStartup,
	}
	if p, ok := boolField[key]; ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*p = b
		return nil
	}

	switch key {
	case KeyPassword:
		s.Password = value
	case KeyBlurRadius:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.BlurRadius = n
	case KeyMonitorMode:
		mode, err := policy.ParseMode(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.MonitorMode = mode
	case KeyDisableMonitors:
		s.DisableMonitors = []string{}
		for _, part := range strings.Split(value, ",") {
			if p := strings.TrimSpace(part); p != "" {
				s.DisableMonitors = append(s.DisableMonitors, p)
			}
		}
	default:
		known := Keys()
		sort.Strings(known)
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(known, ", "))
	}
	return nil
}

// Describe renders settings as key/value pairs in file order. The password
// is masked.
func Describe(s domain.Settings) [][2]string {
	return [][2]string{
		{KeyPassword, strings.Repeat("*", len(s.Password))},
		{KeyBlurEnabled, strconv.FormatBool(s.BlurEnabled)},
		{KeyBlurRadius, strconv.Itoa(s.BlurRadius)},
		{KeyMonitorMode, string(s.MonitorMode)},
		{KeyDisableMonitors, strings.Join(s.DisableMonitors, ",")},
		{KeyMinigameAutostart, strconv.FormatBool(s.MinigameAutostart)},
		{KeyTextOnAllMonitors, strconv.FormatBool(s.TextOnAllMonitors)},
		{KeyDismissNotifications, strconv.FormatBool(s.DismissNotificationsOnStartup)},
		{KeyOpenSettings, strconv.FormatBool(s.OpenSettingsOnStartup)},
	}
}
