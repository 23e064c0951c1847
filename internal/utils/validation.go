package utils

import (
	"fmt"
	"time"
)

// ValidateDateRange checks that both dates parse as ISO calendar dates and
// that the range is not inverted. The expansion itself tolerates an inverted
// range; request validation rejects it up front.
func ValidateDateRange(startDate, endDate string) error {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return fmt.Errorf("start date %q is not a valid date", startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return fmt.Errorf("end date %q is not a valid date", endDate)
	}
	if start.After(end) {
		return fmt.Errorf("start date must not be after end date")
	}
	return nil
}

// ValidateTimeWindow checks an HH:MM window where the end must come after the
// start.
func ValidateTimeWindow(startTime, endTime string) error {
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return fmt.Errorf("start time %q is not a valid HH:MM time", startTime)
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return fmt.Errorf("end time %q is not a valid HH:MM time", endTime)
	}
	if !end.After(start) {
		return fmt.Errorf("end time must be after start time")
	}
	return nil
}

// ValidateCustomDays checks Monday-first day indexes (0=Monday .. 6=Sunday)
// for the custom assignment mode.
func ValidateCustomDays(days []int) error {
	if len(days) == 0 {
		return fmt.Errorf("custom mode requires at least one selected day")
	}
	seen := make(map[int]bool)
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("day index %d is out of range 0..6", d)
		}
		if seen[d] {
			return fmt.Errorf("day index %d is selected twice", d)
		}
		seen[d] = true
	}
	return nil
}
