package domain

import "fmt"

// DraftAssignment is a pending (date, shift, employee) tuple that only lives in
// memory for the duration of a wizard session. It is never mutated after
// creation, only added to or removed from the draft store.
type DraftAssignment struct {
	ID                string `json:"id"`
	EmployeeID        string `json:"employeeID"`
	EmployeeName      string `json:"employeeName"`
	EmployeeCode      string `json:"employeeCode"`
	Date              string `json:"date"`
	ShiftTemplateID   int64  `json:"shiftTemplateID"`
	ShiftName         string `json:"shiftName"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	HasPreference     bool   `json:"hasPreference"`
	MatchesPreference bool   `json:"matchesPreference"`
	Note              string `json:"note"`
}

// DraftAssignmentID derives the synthetic id used for duplicate detection and
// removal. Concatenating the triple guarantees uniqueness within a draft store
// without a counter.
func DraftAssignmentID(date string, shiftTemplateID int64, employeeID string) string {
	return fmt.Sprintf("%s-%d-%s", date, shiftTemplateID, employeeID)
}

// NewDraftAssignment builds a draft assignment for an employee picked into a
// (date, shift) cell, deriving the id and the preference note.
func NewDraftAssignment(emp *Employee, st *ShiftTemplate, date string) DraftAssignment {
	note := "no preference configured"
	if emp.HasPreference {
		if emp.MatchesPreference {
			note = "within preferred hours"
		} else {
			note = "outside preferred hours"
		}
	}

	return DraftAssignment{
		ID:                DraftAssignmentID(date, st.ID, emp.ID),
		EmployeeID:        emp.ID,
		EmployeeName:      emp.FullName,
		EmployeeCode:      emp.Code,
		Date:              date,
		ShiftTemplateID:   st.ID,
		ShiftName:         st.Name,
		StartTime:         st.StartTime,
		EndTime:           st.EndTime,
		HasPreference:     emp.HasPreference,
		MatchesPreference: emp.MatchesPreference,
		Note:              note,
	}
}
