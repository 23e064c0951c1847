package domain

import "time"

type ShiftTemplateState string

const (
	ShiftTemplateActive   ShiftTemplateState = "ACTIVO"
	ShiftTemplateInactive ShiftTemplateState = "INACTIVO"
)

// ShiftTemplate is a named time-of-day window ("turno") reusable across dates.
// StartTime and EndTime are HH:MM strings, the format the turnos service uses
// on the wire.
type ShiftTemplate struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	StartTime       string             `json:"startTime"`
	EndTime         string             `json:"endTime"`
	DurationMinutes int32              `json:"durationMinutes"`
	State           ShiftTemplateState `json:"state"`
	CreatedAt       time.Time          `json:"createdAt"`
}
