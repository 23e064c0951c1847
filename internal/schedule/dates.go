package schedule

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseLocalDate decomposes an ISO date string into its year/month/day parts
// and constructs a local calendar date. Parsing the string as an instant would
// apply a UTC-to-local offset and silently shift the date in some timezones.
func ParseLocalDate(s string) (time.Time, error) {
	var year, month, day int
	if _, err := fmt.Sscanf(s, "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// ExpandRange produces the ordered sequence of ISO dates between start and end
// inclusive. A start after end yields an empty sequence rather than an error;
// callers validate the range before getting here.
func ExpandRange(start, end string) ([]string, error) {
	from, err := ParseLocalDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseLocalDate(end)
	if err != nil {
		return nil, err
	}

	dates := []string{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates, nil
}

// MondayFirstWeekday maps a date to the Monday-first day-of-week index
// (0=Monday .. 6=Sunday) used by assignment modes. Go's Weekday is
// Sunday-first, so Sunday folds to 6 and everything else shifts down by one.
func MondayFirstWeekday(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 6
	}
	return d - 1
}
