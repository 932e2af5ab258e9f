package readaloud

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses a SMIL clock value into seconds. Three formats are
// accepted, distinguished by the number of colon-separated fields:
//
//	H:MM:SS[.fff]  (three fields)
//	M:SS[.fff]     (two fields)
//	SS[.fff]       (bare seconds)
//
// Empty input and unparseable fields yield 0; a missing clipBegin in a SMIL
// par is a zero offset, not an error.
func ParseClock(clock string) float64 {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0
	}

	if strings.Contains(clock, ":") {
		parts := strings.Split(clock, ":")
		switch len(parts) {
		case 3:
			return clockField(parts[0])*3600 + clockField(parts[1])*60 + clockField(parts[2])
		case 2:
			return clockField(parts[0])*60 + clockField(parts[1])
		default:
			return 0
		}
	}

	// Bare seconds, optionally with a unit suffix ("1.5s", "1500ms").
	if strings.HasSuffix(clock, "ms") {
		return clockField(clock[:len(clock)-2]) / 1000
	}
	return clockField(strings.TrimSuffix(clock, "s"))
}

func clockField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatClock renders seconds as "M:SS" for UI duration display. Seconds are
// floor-truncated to whole units, so the sub-second component does not
// survive a parse/format round trip. Negative input formats as "0:00".
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
