package schedule

import (
	"fmt"
	"time"

	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
)

// Fallback window shown when a grouped record references a shift template that
// no longer resolves. Stale references degrade to this window instead of
// failing the whole view.
const (
	fallbackStartTime = "08:00"
	fallbackEndTime   = "17:00"
)

// shiftPalette distinguishes shifts visually in the draft calendar; the color
// carries no status meaning there.
var shiftPalette = []string{
	"#8B5CF6", // purple
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // yellow
	"#EF4444", // red
	"#EC4899", // pink
}

// statusColors conveys sync state in the consolidated view.
var statusColors = map[domain.AssignmentStatus]string{
	domain.StatusPlanned:   "#3B82F6", // blue
	domain.StatusAssigned:  "#10B981", // green
	domain.StatusConfirmed: "#10B981", // green
	domain.StatusCompleted: "#6B7280", // gray
	domain.StatusCancelled: "#EF4444", // red
}

// ColorPolicy picks an event color from the shift template id and the group's
// dominant status. Which of the two matters depends on the view.
type ColorPolicy func(shiftTemplateID int64, dominant domain.AssignmentStatus) string

// ShiftColorPolicy hashes the shift template id into the fixed palette.
func ShiftColorPolicy(shiftTemplateID int64, _ domain.AssignmentStatus) string {
	// First byte of the decimal form, matching how the ids have always been
	// bucketed. Changing this reshuffles every user's colors.
	s := fmt.Sprintf("%d", shiftTemplateID)
	return shiftPalette[int(s[0])%len(shiftPalette)]
}

// StatusColorPolicy maps the dominant status to its fixed color, defaulting to
// the planned color for unknown statuses.
func StatusColorPolicy(_ int64, dominant domain.AssignmentStatus) string {
	if c, ok := statusColors[dominant]; ok {
		return c
	}
	return statusColors[domain.StatusPlanned]
}

type eventGroup struct {
	date            string
	shiftTemplateID int64
	shiftName       string
	records         []domain.Assignment
}

// AggregateEvents partitions records by (date, shiftTemplateID) and converts
// each group into a displayable calendar event. Pure and side-effect free, so
// it is safe to recompute on every request. Output order beyond grouping is
// unspecified; consumers sort if they need a stable display order.
func AggregateEvents(records []domain.Assignment, templates []domain.ShiftTemplate, policy ColorPolicy) []domain.CalendarEvent {
	byID := make(map[int64]*domain.ShiftTemplate, len(templates))
	for i := range templates {
		byID[templates[i].ID] = &templates[i]
	}

	groups := []*eventGroup{}
	index := make(map[string]*eventGroup)
	for _, r := range records {
		key := fmt.Sprintf("%s-%d", r.Date, r.ShiftTemplateID)
		g, ok := index[key]
		if !ok {
			g = &eventGroup{date: r.Date, shiftTemplateID: r.ShiftTemplateID, shiftName: r.ShiftName}
			index[key] = g
			groups = append(groups, g)
		}
		g.records = append(g.records, r)
	}

	events := make([]domain.CalendarEvent, 0, len(groups))
	for _, g := range groups {
		dominant := dominantStatus(g.records)

		startTime, endTime := fallbackStartTime, fallbackEndTime
		name := g.shiftName
		if t, ok := byID[g.shiftTemplateID]; ok {
			startTime, endTime = t.StartTime, t.EndTime
			if name == "" {
				name = t.Name
			}
		}
		if name == "" {
			name = fmt.Sprintf("Turno %d", g.shiftTemplateID)
		}

		start := combineDateTime(g.date, startTime)
		end := combineDateTime(g.date, endTime)

		events = append(events, domain.CalendarEvent{
			ID:              fmt.Sprintf("%s-%d", g.date, g.shiftTemplateID),
			Title:           fmt.Sprintf("%s (%d)", name, len(g.records)),
			Start:           start,
			End:             end,
			Date:            g.date,
			ShiftTemplateID: g.shiftTemplateID,
			ShiftName:       name,
			GroupedRecords:  g.records,
			DominantStatus:  dominant,
			Color:           policy(g.shiftTemplateID, dominant),
		})
	}
	return events
}

// dominantStatus returns the status with the highest occurrence count among
// the records. Ties go to the status seen first, a stable selection over
// insertion order.
func dominantStatus(records []domain.Assignment) domain.AssignmentStatus {
	counts := make(map[domain.AssignmentStatus]int)
	order := []domain.AssignmentStatus{}
	for _, r := range records {
		if _, ok := counts[r.Status]; !ok {
			order = append(order, r.Status)
		}
		counts[r.Status]++
	}

	var best domain.AssignmentStatus
	bestCount := -1
	for _, st := range order {
		if counts[st] > bestCount {
			best = st
			bestCount = counts[st]
		}
	}
	return best
}

// combineDateTime joins an ISO date with an HH:MM (or HH:MM:SS) time-of-day
// into a local time. The combination is wall-clock: adding a duration to
// midnight would drift an hour on DST transition days. Unparseable times fall
// back to midnight on the date.
func combineDateTime(date, timeOfDay string) time.Time {
	day, err := ParseLocalDate(date)
	if err != nil {
		return time.Time{}
	}
	var hour, minute int
	if _, err := fmt.Sscanf(timeOfDay, "%2d:%2d", &hour, &minute); err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local)
}
