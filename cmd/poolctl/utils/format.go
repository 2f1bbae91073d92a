package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatAge renders a timestamp relative to now ("3 minutes ago"). The zero
// time renders as "-".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// FormatSeconds renders a lease time in seconds with its human duration,
// e.g. "43200 (12h0m0s)". A nil value renders as "-".
func FormatSeconds(seconds *int) string {
	if seconds == nil {
		return "-"
	}
	return strconv.Itoa(*seconds) + " (" + (time.Duration(*seconds) * time.Second).String() + ")"
}

// FormatPermit renders a permit setting as allow, deny or "-".
func FormatPermit(permit *bool) string {
	switch {
	case permit == nil:
		return "-"
	case *permit:
		return "allow"
	default:
		return "deny"
	}
}

// JoinOrDash joins values with ", " or returns "-" for an empty list.
func JoinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
