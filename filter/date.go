package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var dateRangeRE = regexp.MustCompile(`^` +
	`(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2}):(\d{2}))?` +
	`(?:\s*(?:--|/)\s*` +
	`(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2}):(\d{2}))?` +
	`)?$`)

// ParseDateRange reads "YYYY-MM-DD[Thh:mm:ss]", optionally followed by
// "--" or "/" and an end date with optional time. A single date covers
// the day, a single date and time covers one second. The time separator
// may also be a blank. Times are naive, like those read from EXIF.
func ParseDateRange(s string) (DateRange, error) {
	m := dateRangeRE.FindStringSubmatch(s)
	if m == nil {
		return DateRange{}, fmt.Errorf("%w: invalid date value '%s'", ErrInvalidFormat, s)
	}
	start, err := dateTime(m[1:7])
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: invalid date value '%s': %w", ErrInvalidFormat, s, err)
	}
	var end time.Time
	switch {
	case m[7] != "":
		if end, err = dateTime(m[7:13]); err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid date value '%s': %w", ErrInvalidFormat, s, err)
		}
	case m[4] == "":
		end = start.AddDate(0, 0, 1)
	default:
		end = start.Add(time.Second)
	}
	return DateRange{Start: start, End: end}, nil
}

// dateTime builds a naive time from year, month, day and the optional
// hour, minute and second.
func dateTime(fields []string) (time.Time, error) {
	var v [6]int
	for i, f := range fields {
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, err
		}
		v[i] = n
	}
	t := time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], v[5], 0, time.UTC)
	if t.Month() != time.Month(v[1]) || t.Day() != v[2] || t.Hour() != v[3] || t.Minute() != v[4] || t.Second() != v[5] {
		return time.Time{}, fmt.Errorf("%04d-%02d-%02d %02d:%02d:%02d out of range", v[0], v[1], v[2], v[3], v[4], v[5])
	}
	return t, nil
}
