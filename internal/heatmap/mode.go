// Package heatmap accumulates gaze hits into visual state: transient point
// markers in particle mode, or a decaying vertex colour blend on the
// equirectangular mesh in highlight mode.
package heatmap

import (
	"fmt"
	"strings"
)

// Mode selects the accumulation strategy. It is chosen once at startup.
type Mode int

const (
	ModeIdle Mode = iota
	ModeParticle
	ModeHighlight
)

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeParticle:
		return "particle"
	case ModeHighlight:
		return "highlight"
	default:
		return "idle"
	}
}

// ParseMode converts a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "particle":
		return ModeParticle, nil
	case "highlight":
		return ModeHighlight, nil
	case "idle", "":
		return ModeIdle, nil
	}
	return ModeIdle, fmt.Errorf("unknown heatmap mode %q", s)
}
