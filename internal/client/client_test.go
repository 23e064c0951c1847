package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
)

type staticTokens string

func (t staticTokens) Token() string { return string(t) }

func TestShiftsClientAdaptsTemplates(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/turnos/activos", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":5,"nombre":"Mañana","horaInicio":"08:00","horaFin":"16:00","duracionTotal":480,"estado":"ACTIVO"}]`))
	}))
	defer srv.Close()

	c := NewShiftsClient(srv.URL, 5*time.Second, staticTokens("tok-123"))
	templates, err := c.ListActiveShiftTemplates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, templates, 1)
	assert.Equal(t, domain.ShiftTemplate{
		ID:              5,
		Name:            "Mañana",
		StartTime:       "08:00",
		EndTime:         "16:00",
		DurationMinutes: 480,
		State:           domain.ShiftTemplateActive,
	}, templates[0])
}

func TestShiftsClientAvailabilityQueryAndAdaptation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/disponibilidades/usuarios-disponibles", r.URL.Path)
		assert.Equal(t, "2025-10-01", r.URL.Query().Get("fecha"))
		assert.Equal(t, "08:00", r.URL.Query().Get("horaInicio"))
		assert.Equal(t, "16:00", r.URL.Query().Get("horaFin"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"keycloakId":"u1","nombreCompleto":"Ana Pérez","codigoEmpleado":"EMP-001","rolApp":"EMPLEADO","tienePreferencias":true,"cumplePreferencias":false}]`))
	}))
	defer srv.Close()

	c := NewShiftsClient(srv.URL, 5*time.Second, staticTokens(""))
	employees, err := c.UsersAvailableFor(context.Background(), "2025-10-01", "08:00", "16:00")

	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "u1", employees[0].ID)
	assert.Equal(t, "Ana Pérez", employees[0].FullName)
	assert.True(t, employees[0].HasPreference)
	assert.False(t, employees[0].MatchesPreference)
}

func TestRemoteErrorPassesBackendMessageThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"El horario ya fue publicado"}`))
	}))
	defer srv.Close()

	c := NewSchedulesClient(srv.URL, 5*time.Second, staticTokens(""))
	_, err := c.Publish(context.Background(), 7)

	require.Error(t, err)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusConflict, remoteErr.StatusCode)
	assert.Equal(t, "El horario ya fue publicado", remoteErr.Message)
}

func TestPublishReportAdaptedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/horarios/7/publicar", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"horarioId":7,"nombreHorario":"Semana 41",
			"totalProcesados":3,"totalExitosos":2,"totalFallidos":1,
			"asignacionesExitosas":[
				{"detalleId":1,"asignacionId":101,"usuarioId":"u1","fecha":"2025-10-06","nombreTurno":"Mañana"},
				{"detalleId":2,"asignacionId":102,"usuarioId":"u2","fecha":"2025-10-06","nombreTurno":"Mañana"}
			],
			"asignacionesFallidas":[
				{"detalleId":3,"usuarioId":"u3","fecha":"2025-10-07","turnoId":5,"motivoError":"El usuario ya tiene una asignación en esa fecha"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewSchedulesClient(srv.URL, 5*time.Second, staticTokens(""))
	report, err := c.Publish(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalProcessed)
	assert.Equal(t, 2, report.TotalSuccess)
	assert.Equal(t, 1, report.TotalErrors)
	require.Len(t, report.Successes, 2)
	assert.Equal(t, int64(101), report.Successes[0].AssignmentID)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "El usuario ya tiene una asignación en esa fecha", report.Failures[0].Reason)
}

func TestGetConsolidatedAdaptation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/horarios/7/consolidado", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"horario":{"id":7,"nombre":"Semana 41","fechaInicio":"2025-10-06","fechaFin":"2025-10-12","estado":"PUBLICADO","creadoEn":"2025-10-01T09:30:00","cantidadDetalles":2},
			"asignacionesPorFecha":{
				"2025-10-06":[{"id":101,"usuarioId":"u1","turnoId":5,"nombreTurno":"Mañana","fecha":"2025-10-06","horaInicio":"08:00","horaFin":"16:00","estado":"ASIGNADO"}]
			},
			"estadisticas":{"totalPlanificadas":2,"totalConfirmadas":1,"totalCompletadas":0,"totalCanceladas":0,"porcentajeSincronizacion":50.0}
		}`))
	}))
	defer srv.Close()

	c := NewSchedulesClient(srv.URL, 5*time.Second, staticTokens(""))
	consolidated, err := c.GetConsolidated(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.SchedulePublished, consolidated.Schedule.State)
	assert.Equal(t, 2025, consolidated.Schedule.CreatedAt.Year())
	require.Len(t, consolidated.AssignmentsByDate["2025-10-06"], 1)
	assert.Equal(t, domain.StatusAssigned, consolidated.AssignmentsByDate["2025-10-06"][0].Status)
	assert.Equal(t, 50.0, consolidated.Statistics.SyncPercentage)
}

func TestCreateDraftScheduleSendsUpstreamFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"nombre":"Semana 41"`)
		assert.Contains(t, string(body), `"fechaInicio":"2025-10-06"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"nombre":"Semana 41","fechaInicio":"2025-10-06","fechaFin":"2025-10-12","estado":"BORRADOR"}`))
	}))
	defer srv.Close()

	c := NewSchedulesClient(srv.URL, 5*time.Second, staticTokens(""))
	s, err := c.CreateDraftSchedule(context.Background(), ScheduleMeta{
		Name:      "Semana 41",
		StartDate: "2025-10-06",
		EndDate:   "2025-10-12",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, domain.ScheduleDraft, s.State)
}
