package hostlib

import (
	"fmt"
	"strings"
	"time"
)

// LoadZone resolves an IANA timezone name via the standard library's
// tzdata (bundled with the Go toolchain, so no pack example needs its
// own timezone database), defaulting to UTC for an empty name.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone: %s", name)
	}
	return loc, nil
}

// TimestampGetter extracts a calendar field from t in the given
// timezone, backing the timestamp getter methods of spec.md §4.5
// (getFullYear, getMonth, getDayOfMonth, getDayOfWeek, getDayOfYear,
// getHours, getMinutes, getSeconds, getMilliseconds).
func TimestampGetter(t time.Time, zone *time.Location, field string) (int64, error) {
	lt := t.In(zone)
	switch field {
	case "getFullYear":
		return int64(lt.Year()), nil
	case "getMonth":
		return int64(lt.Month()) - 1, nil
	case "getDayOfMonth":
		return int64(lt.Day()) - 1, nil
	case "getDate":
		return int64(lt.Day()), nil
	case "getDayOfWeek":
		return int64(lt.Weekday()), nil
	case "getDayOfYear":
		return int64(lt.YearDay()) - 1, nil
	case "getHours":
		return int64(lt.Hour()), nil
	case "getMinutes":
		return int64(lt.Minute()), nil
	case "getSeconds":
		return int64(lt.Second()), nil
	case "getMilliseconds":
		return int64(lt.Nanosecond() / int(time.Millisecond)), nil
	}
	return 0, fmt.Errorf("unknown timestamp getter: %s", field)
}

// DurationGetter extracts a component from d, backing duration getter
// methods (getHours, getMinutes, getSeconds, getMilliseconds).
func DurationGetter(d time.Duration, field string) (int64, error) {
	switch field {
	case "getHours":
		return int64(d / time.Hour), nil
	case "getMinutes":
		return int64(d / time.Minute), nil
	case "getSeconds":
		return int64(d / time.Second), nil
	case "getMilliseconds":
		return int64(d / time.Millisecond), nil
	}
	return 0, fmt.Errorf("unknown duration getter: %s", field)
}

// ParseDuration parses a CEL duration string ("72h3m0.5s") via the
// standard library, then rejects what time.ParseDuration silently
// allows but CEL does not: a bare number with no unit.
func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if strings.TrimLeft(s, "+-0123456789.") == "" {
		return 0, fmt.Errorf("time: missing unit in duration %q", s)
	}
	return d, nil
}

// ParseTimestamp parses an RFC 3339 timestamp string, the wire format
// spec.md §4.5 specifies for the `timestamp()` conversion function.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
