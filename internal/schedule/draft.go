package schedule

import (
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
)

// DraftStore holds the pending assignments of one wizard session, in insertion
// order. It is plain in-memory state with no I/O; the session layer serializes
// access to it.
type DraftStore struct {
	assignments []domain.DraftAssignment
	index       map[string]struct{}
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		assignments: []domain.DraftAssignment{},
		index:       make(map[string]struct{}),
	}
}

// Add appends each candidate unless an assignment with the same
// (date, shiftTemplateID, employeeID) triple already exists. Duplicates are
// skipped silently: re-submitting the same assignment is a no-op, not a
// failure. Returns how many were added and how many were skipped.
func (s *DraftStore) Add(candidates []domain.DraftAssignment) (added, skipped int) {
	for _, c := range candidates {
		if _, ok := s.index[c.ID]; ok {
			skipped++
			continue
		}
		s.index[c.ID] = struct{}{}
		s.assignments = append(s.assignments, c)
		added++
	}
	return added, skipped
}

// Remove drops the assignment with the given id; absent ids are a no-op.
func (s *DraftStore) Remove(id string) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, a := range s.assignments {
		if a.ID == id {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			break
		}
	}
}

// All returns the stored assignments in insertion order.
func (s *DraftStore) All() []domain.DraftAssignment {
	out := make([]domain.DraftAssignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

func (s *DraftStore) Len() int {
	return len(s.assignments)
}

// ListByDateAndShift returns the assignments matching both keys, in insertion
// order.
func (s *DraftStore) ListByDateAndShift(date string, shiftTemplateID int64) []domain.DraftAssignment {
	out := []domain.DraftAssignment{}
	for _, a := range s.assignments {
		if a.Date == date && a.ShiftTemplateID == shiftTemplateID {
			out = append(out, a)
		}
	}
	return out
}

// EmployeeGroup collects one employee's pending assignments for the review
// step.
type EmployeeGroup struct {
	EmployeeID  string                   `json:"employeeID"`
	Name        string                   `json:"name"`
	Code        string                   `json:"code"`
	Assignments []domain.DraftAssignment `json:"assignments"`
}

// GroupByEmployee groups assignments by employee id. Group order follows the
// first occurrence of each employee in the store.
func (s *DraftStore) GroupByEmployee() []EmployeeGroup {
	byID := make(map[string]int)
	groups := []EmployeeGroup{}
	for _, a := range s.assignments {
		i, ok := byID[a.EmployeeID]
		if !ok {
			i = len(groups)
			byID[a.EmployeeID] = i
			groups = append(groups, EmployeeGroup{
				EmployeeID:  a.EmployeeID,
				Name:        a.EmployeeName,
				Code:        a.EmployeeCode,
				Assignments: []domain.DraftAssignment{},
			})
		}
		groups[i].Assignments = append(groups[i].Assignments, a)
	}
	return groups
}

// CountOutOfPreference counts assignments where the employee has a configured
// preference and the shift falls outside it. The count feeds a non-blocking
// warning before submission; such assignments are permitted, never rejected.
func (s *DraftStore) CountOutOfPreference() int {
	n := 0
	for _, a := range s.assignments {
		if a.HasPreference && !a.MatchesPreference {
			n++
		}
	}
	return n
}
