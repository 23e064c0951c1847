package domain

import "time"

type ScheduleState string

const (
	ScheduleDraft     ScheduleState = "BORRADOR"
	SchedulePublished ScheduleState = "PUBLICADO"
)

// AssignmentStatus covers both planned details (PLANIFICADO, before publication)
// and the states the turnos service tracks for real assignments.
type AssignmentStatus string

const (
	StatusPlanned   AssignmentStatus = "PLANIFICADO"
	StatusAssigned  AssignmentStatus = "ASIGNADO"
	StatusConfirmed AssignmentStatus = "CONFIRMADO"
	StatusCompleted AssignmentStatus = "COMPLETADO"
	StatusCancelled AssignmentStatus = "CANCELADO"
	StatusAbsent    AssignmentStatus = "AUSENTE"
)

// Schedule is a named date-range container ("horario") owned by the horarios
// service. Once published it becomes a set of concrete assignments there.
type Schedule struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	State       ScheduleState    `json:"state"`
	CreatedBy   string           `json:"createdBy"`
	CreatedAt   time.Time        `json:"createdAt"`
	PublishedAt *time.Time       `json:"publishedAt"`
	DetailCount int              `json:"detailCount"`
	Details     []ScheduleDetail `json:"details,omitempty"`
}

// ScheduleDetail is one planned assignment inside a schedule, as stored by the
// horarios service.
type ScheduleDetail struct {
	ID              int64            `json:"id"`
	ScheduleID      int64            `json:"scheduleID"`
	EmployeeID      string           `json:"employeeID"`
	Date            string           `json:"date"`
	ShiftTemplateID int64            `json:"shiftTemplateID"`
	ShiftName       string           `json:"shiftName"`
	AssignmentID    *int64           `json:"assignmentID"`
	Status          AssignmentStatus `json:"status"`
	Note            string           `json:"note"`
}

// Assignment is a concrete backend-tracked assignment from the turnos service.
type Assignment struct {
	ID              int64            `json:"id"`
	EmployeeID      string           `json:"employeeID"`
	ShiftTemplateID int64            `json:"shiftTemplateID"`
	ShiftName       string           `json:"shiftName"`
	Date            string           `json:"date"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	Status          AssignmentStatus `json:"status"`
	Note            string           `json:"note"`
}

// PublishReport is the horarios service's per-item publication result. It is
// rendered verbatim; this service never recomputes its counts.
type PublishReport struct {
	ScheduleID     int64             `json:"scheduleID"`
	ScheduleName   string            `json:"scheduleName"`
	TotalProcessed int               `json:"totalProcessed"`
	TotalSuccess   int               `json:"totalSuccess"`
	TotalErrors    int               `json:"totalErrors"`
	Successes      []PublishedDetail `json:"successes"`
	Failures       []FailedDetail    `json:"failures"`
}

type PublishedDetail struct {
	DetailID     int64  `json:"detailID"`
	AssignmentID int64  `json:"assignmentID"`
	EmployeeID   string `json:"employeeID"`
	Date         string `json:"date"`
	ShiftName    string `json:"shiftName"`
}

type FailedDetail struct {
	DetailID        int64  `json:"detailID"`
	EmployeeID      string `json:"employeeID"`
	Date            string `json:"date"`
	ShiftTemplateID int64  `json:"shiftTemplateID"`
	Reason          string `json:"reason"`
}

// ConsolidatedSchedule merges a schedule's planned details with the real
// assignments the turnos service tracks, to show drift between plan and
// reality.
type ConsolidatedSchedule struct {
	Schedule          Schedule                `json:"schedule"`
	AssignmentsByDate map[string][]Assignment `json:"assignmentsByDate"`
	Statistics        ScheduleStatistics      `json:"statistics"`
}

type ScheduleStatistics struct {
	TotalPlanned   int     `json:"totalPlanned"`
	TotalConfirmed int     `json:"totalConfirmed"`
	TotalCompleted int     `json:"totalCompleted"`
	TotalCancelled int     `json:"totalCancelled"`
	SyncPercentage float64 `json:"syncPercentage"`
}
