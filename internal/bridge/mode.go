package bridge

import (
	"fmt"
	"strings"
)

// Mode is the configured delegation policy.
type Mode string

const (
	// ModeAuto delegates when the platform supports it.
	ModeAuto Mode = "auto"
	// ModeOn delegates when the platform supports it and logs when it does not.
	ModeOn Mode = "on"
	// ModeOff always renders on the foreground context.
	ModeOff Mode = "off"
)

// ParseMode parses a delegation mode. The empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeOn, ModeOff:
		return m, nil
	default:
		return "", fmt.Errorf("unknown delegation mode %q", s)
	}
}

// Select decides once per session whether rendering is delegated.
// capable reports whether the surface can be driven from another thread.
func Select(mode Mode, capable bool) bool {
	if mode == ModeOff {
		return false
	}
	return capable
}
