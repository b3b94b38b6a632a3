// Package timezone converts between wall-clock datetimes in named IANA zones
// and absolute UTC instants. All functions are total: malformed input yields
// an empty string and an unknown zone falls back to UTC, so callers never
// need to handle errors for display paths.
package timezone

import (
	"fmt"
	"time"
)

// localLayout is the minute-precision editing format (no zone suffix),
// the shape an HTML datetime-local input produces.
const localLayout = "2006-01-02T15:04"

// LocalToUTC interprets local ("2006-01-02T15:04") as a wall-clock time
// observed in the named IANA zone and returns the equivalent instant as an
// RFC 3339 UTC string. Returns "" when local does not parse. An unknown zone
// name falls back to UTC.
//
// Known limitation: a wall-clock time inside a DST fold (occurs twice on a
// "fall back" day) resolves to whichever instant ParseInLocation picks.
func LocalToUTC(local, tz string) string {
	t, err := time.ParseInLocation(localLayout, local, loadLocation(tz))
	if err != nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// UTCToLocal is the inverse of LocalToUTC: it renders an RFC 3339 instant as
// a minute-precision wall-clock string in the named zone, suitable for
// re-editing. Returns "" when the instant does not parse.
func UTCToLocal(utcInstant, tz string) string {
	t, err := time.Parse(time.RFC3339, utcInstant)
	if err != nil {
		return ""
	}
	return t.In(loadLocation(tz)).Format(localLayout)
}

// FormatForDisplay renders an RFC 3339 instant in the named zone using the
// fixed "dd/mm/yyyy at HH:mm[:ss]" display pattern. Returns "" when the
// instant does not parse.
func FormatForDisplay(utcInstant, tz string, includeSeconds bool) string {
	t, err := time.Parse(time.RFC3339, utcInstant)
	if err != nil {
		return ""
	}
	local := t.In(loadLocation(tz))
	if includeSeconds {
		return local.Format("02/01/2006") + " at " + local.Format("15:04:05")
	}
	return local.Format("02/01/2006") + " at " + local.Format("15:04")
}

// Validate reports whether tz names a loadable IANA zone.
func Validate(tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return nil
}

func loadLocation(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
