package domain

import "time"

// CalendarEvent is a derived, read-only view of one (date, shift) group of
// assignment-like records. It is rebuilt from source data on every request.
type CalendarEvent struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	Date            string           `json:"date"`
	ShiftTemplateID int64            `json:"shiftTemplateID"`
	ShiftName       string           `json:"shiftName"`
	GroupedRecords  []Assignment     `json:"groupedRecords"`
	DominantStatus  AssignmentStatus `json:"dominantStatus"`
	Color           string           `json:"color"`
}
