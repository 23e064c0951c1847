// Package session holds the in-memory wizard sessions. A session carries one
// admin's draft assignments between wizard steps; it is deliberately never
// persisted, so a restart or an expired TTL discards the draft.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
	"github.com/turnapp-dev/scheduling-console/backend/internal/schedule"
)

// Session is one wizard run. The mutex serializes mutations because the HTTP
// server is concurrent even though each admin drives their wizard one call at
// a time.
type Session struct {
	ID          string
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Dates       []string
	CreatedBy   string

	mu         sync.Mutex
	drafts     *schedule.DraftStore
	lastActive time.Time
}

// AddAssignments forwards to the draft store's duplicate-skipping add.
func (s *Session) AddAssignments(candidates []domain.DraftAssignment) (added, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.drafts.Add(candidates)
}

func (s *Session) RemoveAssignment(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	s.drafts.Remove(id)
}

func (s *Session) Assignments() []domain.DraftAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.All()
}

func (s *Session) AssignmentsByDateAndShift(date string, shiftTemplateID int64) []domain.DraftAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.ListByDateAndShift(date, shiftTemplateID)
}

func (s *Session) GroupedByEmployee() []schedule.EmployeeGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.GroupByEmployee()
}

func (s *Session) OutOfPreferenceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.CountOutOfPreference()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Len()
}

// Manager tracks live sessions and sweeps out the ones idle past the TTL.
type Manager struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Create(name, description, startDate, endDate, createdBy string, dates []string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		Dates:       dates,
		CreatedBy:   createdBy,
		drafts:      schedule.NewDraftStore(),
		lastActive:  time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session and whether it exists. A hit refreshes the idle
// clock.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
	return s, true
}

// Delete discards a session. Absent ids are a no-op, matching cancel being
// safe to call twice.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) sweep() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastActive)
		s.mu.Unlock()
		if idle > m.ttl {
			delete(m.sessions, id)
			slog.Info("expired wizard session discarded", "session", id, "idle", idle)
		}
	}
}

// Run sweeps expired sessions on the given interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}
