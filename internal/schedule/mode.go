package schedule

import (
	"fmt"
	"slices"
	"time"
)

// AssignmentMode selects which dates of a schedule's range an employee pick
// applies to.
type AssignmentMode string

const (
	ModeSingle    AssignmentMode = "single"
	ModeFullRange AssignmentMode = "fullRange"
	ModeWeekdays  AssignmentMode = "weekdays"
	ModeWeekend   AssignmentMode = "weekend"
	ModeCustom    AssignmentMode = "custom"
)

// ParseAssignmentMode validates a mode selector coming off the wire.
func ParseAssignmentMode(s string) (AssignmentMode, error) {
	switch m := AssignmentMode(s); m {
	case ModeSingle, ModeFullRange, ModeWeekdays, ModeWeekend, ModeCustom:
		return m, nil
	default:
		return "", fmt.Errorf("unknown assignment mode %q", s)
	}
}

// ResolveDates filters allDates down to the dates an action should apply to.
// It is pure and never mutates allDates, so the UI can preview counts before
// committing. customDays holds Monday-first indexes (0=Mon .. 6=Sun) and is
// only consulted for ModeCustom.
func ResolveDates(mode AssignmentMode, allDates []string, anchor string, customDays []int) ([]string, error) {
	switch mode {
	case ModeSingle:
		return []string{anchor}, nil
	case ModeFullRange:
		return slices.Clone(allDates), nil
	case ModeWeekdays:
		return filterDates(allDates, func(t time.Time) bool {
			wd := t.Weekday()
			return wd >= time.Monday && wd <= time.Friday
		})
	case ModeWeekend:
		return filterDates(allDates, func(t time.Time) bool {
			wd := t.Weekday()
			return wd == time.Saturday || wd == time.Sunday
		})
	case ModeCustom:
		return filterDates(allDates, func(t time.Time) bool {
			return slices.Contains(customDays, MondayFirstWeekday(t))
		})
	default:
		return nil, fmt.Errorf("unknown assignment mode %q", mode)
	}
}

func filterDates(dates []string, keep func(time.Time) bool) ([]string, error) {
	out := []string{}
	for _, d := range dates {
		t, err := ParseLocalDate(d)
		if err != nil {
			return nil, err
		}
		if keep(t) {
			out = append(out, d)
		}
	}
	return out, nil
}
