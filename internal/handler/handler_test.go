package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turnapp-dev/scheduling-console/backend/internal/client"
	"github.com/turnapp-dev/scheduling-console/backend/internal/config"
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
	"github.com/turnapp-dev/scheduling-console/backend/internal/session"
)

const testSecret = "test-secret"

type fakeUsers struct{}

func (f *fakeUsers) GetAllUsers(ctx context.Context) ([]domain.Employee, error) {
	return []domain.Employee{}, nil
}

func (f *fakeUsers) GetUser(ctx context.Context, id string) (*domain.Employee, error) {
	return &domain.Employee{ID: id}, nil
}

type fakeShifts struct {
	templates    []domain.ShiftTemplate
	available    map[string][]domain.Employee // keyed by date
	availableErr error
}

func (f *fakeShifts) ListActiveShiftTemplates(ctx context.Context) ([]domain.ShiftTemplate, error) {
	return f.templates, nil
}

func (f *fakeShifts) UsersAvailableFor(ctx context.Context, date, startTime, endTime string) ([]domain.Employee, error) {
	if f.availableErr != nil {
		return nil, f.availableErr
	}
	return f.available[date], nil
}

type fakeSchedules struct {
	created   []client.ScheduleMeta
	details   []client.DetailRequest
	published []int64
	report    *domain.PublishReport
}

func (f *fakeSchedules) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	return []domain.Schedule{{ID: 1, Name: "Semana 40", State: domain.SchedulePublished}}, nil
}

func (f *fakeSchedules) GetSchedule(ctx context.Context, id int64, includeDetails bool) (*domain.Schedule, error) {
	return &domain.Schedule{ID: id}, nil
}

func (f *fakeSchedules) CreateDraftSchedule(ctx context.Context, meta client.ScheduleMeta) (*domain.Schedule, error) {
	f.created = append(f.created, meta)
	return &domain.Schedule{ID: 7, Name: meta.Name, State: domain.ScheduleDraft}, nil
}

func (f *fakeSchedules) AddDetailsBatch(ctx context.Context, scheduleID int64, details []client.DetailRequest) ([]domain.ScheduleDetail, error) {
	f.details = append(f.details, details...)
	return []domain.ScheduleDetail{}, nil
}

func (f *fakeSchedules) Publish(ctx context.Context, scheduleID int64) (*domain.PublishReport, error) {
	f.published = append(f.published, scheduleID)
	return f.report, nil
}

func (f *fakeSchedules) GetConsolidated(ctx context.Context, scheduleID int64) (*domain.ConsolidatedSchedule, error) {
	return &domain.ConsolidatedSchedule{
		Schedule: domain.Schedule{ID: scheduleID},
		AssignmentsByDate: map[string][]domain.Assignment{
			"2025-10-06": {
				{ID: 1, ShiftTemplateID: 1, ShiftName: "Mañana", Date: "2025-10-06", Status: domain.StatusConfirmed},
				{ID: 2, ShiftTemplateID: 1, ShiftName: "Mañana", Date: "2025-10-06", Status: domain.StatusConfirmed},
				{ID: 3, ShiftTemplateID: 1, ShiftName: "Mañana", Date: "2025-10-06", Status: domain.StatusCancelled},
			},
		},
	}, nil
}

type fakeMailQueue struct {
	published []domain.MailMessage
}

func (f *fakeMailQueue) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	var m domain.MailMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		return err
	}
	f.published = append(f.published, m)
	return nil
}

type testEnv struct {
	handler   *Handler
	shifts    *fakeShifts
	schedules *fakeSchedules
	mailQueue *fakeMailQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.Redis.OperationTimeout = 1
	cfg.Redis.TemplateCacheTTL = 1
	cfg.RabbitMQ.PublishTimeout = 1

	shifts := &fakeShifts{
		templates: []domain.ShiftTemplate{
			{ID: 1, Name: "Mañana", StartTime: "08:00", EndTime: "16:00", State: domain.ShiftTemplateActive},
			{ID: 2, Name: "Tarde", StartTime: "16:00", EndTime: "23:00", State: domain.ShiftTemplateActive},
		},
		available: map[string][]domain.Employee{},
	}
	schedules := &fakeSchedules{
		report: &domain.PublishReport{
			ScheduleID:     7,
			ScheduleName:   "Semana 41",
			TotalProcessed: 2,
			TotalSuccess:   2,
			Successes:      []domain.PublishedDetail{},
			Failures:       []domain.FailedDetail{},
		},
	}
	mailQueue := &fakeMailQueue{}

	// nothing listens on this port, so every cache operation degrades to a
	// direct fetch
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	h, err := NewHandler(cfg, &fakeUsers{}, shifts, schedules, session.NewManager(time.Hour), mailQueue, rdb)
	require.NoError(t, err)
	h.RegisterRoutes()

	return &testEnv{handler: h, shifts: shifts, schedules: schedules, mailQueue: mailQueue}
}

func signToken(t *testing.T, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role:  role,
		Name:  "Ana Torres",
		Email: "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	ss, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return ss
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func (e *testEnv) createSession(t *testing.T, token string) string {
	t.Helper()

	_, resp := e.do(t, http.MethodPost, "/wizard", token, map[string]string{
		"name":      "Semana 41",
		"startDate": "2025-10-06",
		"endDate":   "2025-10-12",
	})
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	return data["id"].(string)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	_, resp := env.do(t, http.MethodGet, "/shift-templates", "", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "user is not logged in", resp.Message)

	_, resp = env.do(t, http.MethodGet, "/shift-templates", "not-a-token", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid token", resp.Message)
}

func TestWizardRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleEmployee))

	_, resp := env.do(t, http.MethodPost, "/wizard", token, map[string]string{
		"name":      "Semana 41",
		"startDate": "2025-10-06",
		"endDate":   "2025-10-12",
	})
	assert.False(t, resp.Success)
	assert.Equal(t, "insufficient permissions", resp.Message)
}

func TestCreateWizardSessionExpandsRange(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))

	_, resp := env.do(t, http.MethodPost, "/wizard", token, map[string]string{
		"name":      "Semana 41",
		"startDate": "2025-10-06",
		"endDate":   "2025-10-12",
	})
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "admin-1", data["createdBy"])
	assert.Len(t, data["dates"], 7)
}

func TestCreateWizardSessionRejectsInvertedRange(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))

	_, resp := env.do(t, http.MethodPost, "/wizard", token, map[string]string{
		"name":      "Semana 41",
		"startDate": "2025-10-12",
		"endDate":   "2025-10-06",
	})
	assert.False(t, resp.Success)
}

func TestPreviewAssignmentDates(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	// 2025-10-06 is a Monday, so the week has 5 weekdays
	_, resp := env.do(t, http.MethodGet, "/wizard/"+sessionID+"/dates?mode=weekdays", token, nil)
	require.True(t, resp.Success, resp.Message)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(5), data["count"])

	_, resp = env.do(t, http.MethodGet, "/wizard/"+sessionID+"/dates?mode=custom&days=5,6", token, nil)
	require.True(t, resp.Success, resp.Message)
	data = resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["count"])

	_, resp = env.do(t, http.MethodGet, "/wizard/"+sessionID+"/dates?mode=single&anchor=2025-11-01", token, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "anchor date is outside the schedule range", resp.Message)

	_, resp = env.do(t, http.MethodGet, "/wizard/"+sessionID+"/dates?mode=everything", token, nil)
	assert.False(t, resp.Success)
}

func TestAddAssignmentsChecksAvailability(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	env.shifts.available["2025-10-06"] = []domain.Employee{
		{ID: "emp-1", FullName: "Ana Torres", HasPreference: true, MatchesPreference: true},
	}

	_, resp := env.do(t, http.MethodPost, "/wizard/"+sessionID+"/assignments", token, map[string]any{
		"shiftTemplateID": 1,
		"mode":            "single",
		"anchor":          "2025-10-06",
		"employeeIDs":     []string{"emp-1", "emp-2"},
	})
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["added"])
	assert.Equal(t, float64(0), data["skipped"])
	assert.Len(t, data["rejected"], 1)
}

func TestAddAssignmentsSkipsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	env.shifts.available["2025-10-06"] = []domain.Employee{{ID: "emp-1", FullName: "Ana Torres"}}

	body := map[string]any{
		"shiftTemplateID": 1,
		"mode":            "single",
		"anchor":          "2025-10-06",
		"employeeIDs":     []string{"emp-1"},
	}

	_, resp := env.do(t, http.MethodPost, "/wizard/"+sessionID+"/assignments", token, body)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, float64(1), resp.Data.(map[string]any)["added"])

	_, resp = env.do(t, http.MethodPost, "/wizard/"+sessionID+"/assignments", token, body)
	require.True(t, resp.Success, resp.Message)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(0), data["added"])
	assert.Equal(t, float64(1), data["skipped"])
	assert.Equal(t, float64(1), data["total"])
}

func TestRemoveAssignment(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	env.shifts.available["2025-10-06"] = []domain.Employee{{ID: "emp-1", FullName: "Ana Torres"}}

	_, resp := env.do(t, http.MethodPost, "/wizard/"+sessionID+"/assignments", token, map[string]any{
		"shiftTemplateID": 1,
		"mode":            "single",
		"anchor":          "2025-10-06",
		"employeeIDs":     []string{"emp-1"},
	})
	require.True(t, resp.Success, resp.Message)

	_, resp = env.do(t, http.MethodDelete, "/wizard/"+sessionID+"/assignments/2025-10-06-1-emp-1", token, nil)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, float64(0), resp.Data.(map[string]any)["total"])

	// removing again is a no-op
	_, resp = env.do(t, http.MethodDelete, "/wizard/"+sessionID+"/assignments/2025-10-06-1-emp-1", token, nil)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, float64(0), resp.Data.(map[string]any)["total"])
}

func TestWizardReview(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	env.shifts.available["2025-10-06"] = []domain.Employee{
		{ID: "emp-1", FullName: "Ana Torres", HasPreference: true, MatchesPreference: false},
		{ID: "emp-2", FullName: "Luis Soto", HasPreference: true, MatchesPreference: true},
	}

	_, resp := env.do(t, http.MethodPost, "/wizard/"+sessionID+"/assignments", token, map[string]any{
		"shiftTemplateID": 1,
		"mode":            "single",
		"anchor":          "2025-10-06",
		"employeeIDs":     []string{"emp-1", "emp-2"},
	})
	require.True(t, resp.Success, resp.Message)

	_, resp = env.do(t, http.MethodGet, "/wizard/"+sessionID+"/review", token, nil)
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["outOfPreference"])
	assert.Equal(t, float64(2), data["totalAssignments"])
	assert.Len(t, data["byEmployee"], 2)

	// both assignments share the (date, shift) cell, so one event
	events := data["events"].([]any)
	require.Len(t, events, 1)
	event := events[0].(map[string]any)
	assert.Equal(t, "Mañana (2)", event["title"])
	assert.Equal(t, string(domain.StatusPlanned), event["dominantStatus"])
}

func TestSubmitWizard(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	env.shifts.available["2025-10-06"] = []domain.Employee{
		{ID: "emp-1", FullName: "Ana Torres"},
		{ID: "emp-2", FullName: "Luis Soto"},
	}

	_, resp := env.do(t, http.MethodPost, "/wizard/"+sessionID+"/assignments", token, map[string]any{
		"shiftTemplateID": 1,
		"mode":            "single",
		"anchor":          "2025-10-06",
		"employeeIDs":     []string{"emp-1", "emp-2"},
	})
	require.True(t, resp.Success, resp.Message)

	_, resp = env.do(t, http.MethodPost, "/wizard/"+sessionID+"/submit", token, nil)
	require.True(t, resp.Success, resp.Message)

	// the report is passed through untouched
	report := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), report["totalProcessed"])
	assert.Equal(t, float64(2), report["totalSuccess"])

	require.Len(t, env.schedules.created, 1)
	assert.Equal(t, "Semana 41", env.schedules.created[0].Name)
	assert.Len(t, env.schedules.details, 2)
	assert.Equal(t, []int64{7}, env.schedules.published)

	require.Len(t, env.mailQueue.published, 1)
	mail := env.mailQueue.published[0]
	assert.Equal(t, "schedule_published", mail.Type)
	assert.Equal(t, "ana@example.com", mail.To)

	// the session is gone once the schedule lives upstream
	_, resp = env.do(t, http.MethodGet, "/wizard/"+sessionID, token, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "wizard session does not exist or has expired", resp.Message)
}

func TestSubmitWizardRejectsEmptyDraft(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	_, resp := env.do(t, http.MethodPost, "/wizard/"+sessionID+"/submit", token, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "the draft has no assignments to publish", resp.Message)
	assert.Empty(t, env.schedules.created)
}

func TestUpstreamErrorPassthrough(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	env.shifts.availableErr = &client.RemoteError{
		StatusCode: http.StatusConflict,
		Message:    "El horario ya fue publicado",
	}

	_, resp := env.do(t, http.MethodGet, "/wizard/"+sessionID+"/candidates?date=2025-10-06&shiftTemplateID=1", token, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "El horario ya fue publicado", resp.Message)
}

func TestGetConsolidatedScheduleEvents(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))

	_, resp := env.do(t, http.MethodGet, "/schedules/5/consolidated", token, nil)
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	events := data["events"].([]any)
	require.Len(t, events, 1)

	// 2 confirmed vs 1 cancelled, so the event takes the confirmed color
	event := events[0].(map[string]any)
	assert.Equal(t, string(domain.StatusConfirmed), event["dominantStatus"])
	assert.Equal(t, "#10B981", event["color"])
}

func TestGetAssignmentCandidatesIncludesCellDrafts(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	env.shifts.available["2025-10-06"] = []domain.Employee{
		{ID: "emp-1", FullName: "Ana Torres"},
		{ID: "emp-2", FullName: "Luis Soto"},
	}

	_, resp := env.do(t, http.MethodPost, "/wizard/"+sessionID+"/assignments", token, map[string]any{
		"shiftTemplateID": 1,
		"mode":            "single",
		"anchor":          "2025-10-06",
		"employeeIDs":     []string{"emp-1"},
	})
	require.True(t, resp.Success, resp.Message)

	_, resp = env.do(t, http.MethodGet, "/wizard/"+sessionID+"/candidates?date=2025-10-06&shiftTemplateID=1", token, nil)
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	assert.Len(t, data["candidates"], 2)
	assigned := data["assigned"].([]any)
	require.Len(t, assigned, 1)
	assert.Equal(t, "emp-1", assigned[0].(map[string]any)["employeeID"])
}

func TestDecodeCachedTemplates(t *testing.T) {
	templates, err := decodeCachedTemplates(`[{"id":1,"name":"Mañana","startTime":"08:00","endTime":"16:00"}]`)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Mañana", templates[0].Name)

	// a corrupt entry reports why it was discarded
	_, err = decodeCachedTemplates(`{"truncated`)
	assert.Error(t, err)
}

func TestGetActiveShiftTemplatesSurvivesRedisOutage(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))

	_, resp := env.do(t, http.MethodGet, "/shift-templates", token, nil)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, resp.Data, 2)
}

func TestCandidatesRejectDateOutsideRange(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, string(domain.RoleAdmin))
	sessionID := env.createSession(t, token)

	path := fmt.Sprintf("/wizard/%s/candidates?date=2025-11-01&shiftTemplateID=1", sessionID)
	_, resp := env.do(t, http.MethodGet, path, token, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "date is outside the schedule range", resp.Message)
}
