// Package policy decides which monitors a lock session blanks.
// Each blanking mode is a rule mapping the enumerated topology to the
// subset of monitors that need an opaque overlay.
package policy

import (
	"fmt"
	"strings"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// devicePrefix is the Win32 device namespace prefix on monitor names.
const devicePrefix = `\\.\`

// displayPrefix is the canonical stem every monitor name carries.
const displayPrefix = "DISPLAY"

// Blanking is a resolved blanking policy.
type Blanking struct {
	Mode  domain.BlankingMode
	Names []string // custom mode only
}

// FromSettings builds the blanking policy from a settings record.
func FromSettings(s domain.Settings) Blanking {
	return Blanking{Mode: s.MonitorMode, Names: s.DisableMonitors}
}

// ParseMode parses a blanking mode name case-insensitively.
func ParseMode(s string) (domain.BlankingMode, error) {
	switch domain.BlankingMode(strings.ToLower(strings.TrimSpace(s))) {
	case domain.BlankingNone:
		return domain.BlankingNone, nil
	case domain.BlankingAll:
		return domain.BlankingAll, nil
	case domain.BlankingCustom:
		return domain.BlankingCustom, nil
	}
	return "", fmt.Errorf("unknown monitor mode %q (want none, all or custom)", s)
}

// Canonicalize maps a monitor name to its comparison-stable form.
// "2", "display2", "Display2" and `\\.\DISPLAY2` all become "DISPLAY2".
// Names that don't follow the DISPLAY<n> pattern are prefixed and accepted.
func Canonicalize(name string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(name), devicePrefix)
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, displayPrefix) {
		return upper
	}
	return displayPrefix + upper
}

// CanonicalSet canonicalizes names into a set; blank entries are skipped.
func CanonicalSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		set[Canonicalize(n)] = struct{}{}
	}
	return set
}

// Targets returns the monitors that must be covered by an overlay.
// An empty or nil topology always yields no targets.
func Targets(p Blanking, monitors []domain.MonitorDescriptor) []domain.MonitorDescriptor {
	if len(monitors) == 0 {
		return nil
	}

	switch p.Mode {
	case domain.BlankingAll:
		return append([]domain.MonitorDescriptor(nil), monitors...)

	case domain.BlankingCustom:
		// Custom with nothing selected blanks nothing.
		if len(p.Names) == 0 {
			return nil
		}
		wanted := CanonicalSet(p.Names)
		if len(wanted) == 0 {
			return nil
		}
		var targets []domain.MonitorDescriptor
		for _, m := range monitors {
			if _, ok := wanted[Canonicalize(m.Name)]; ok {
				targets = append(targets, m)
			}
		}
		return targets

	default:
		return nil
	}
}
