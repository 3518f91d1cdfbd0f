package timeutil

import (
	"time"
)

// Location resolves an IANA timezone name.
// Empty or unknown names fall back to the machine's local zone.
func Location(timezone string) *time.Location {
	if timezone == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// InZone returns t as seen in the given timezone
func InZone(t time.Time, timezone string) time.Time {
	return t.In(Location(timezone))
}

// FormatDate formats t as a long date ("2 January 2006") in the given timezone
func FormatDate(t time.Time, timezone string) string {
	return InZone(t, timezone).Format("2 January 2006")
}

// FormatShortDate formats t as "2006-01-02" in the given timezone
func FormatShortDate(t time.Time, timezone string) string {
	return InZone(t, timezone).Format(time.DateOnly)
}

// IsValidTimezone reports whether timezone is empty or a name the system tz database knows
func IsValidTimezone(timezone string) bool {
	if timezone == "" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
