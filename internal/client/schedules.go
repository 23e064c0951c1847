package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
)

// SchedulesAPI is what the handlers need from the horarios service. Publish
// semantics (per-item success, partial failures) live entirely upstream.
type SchedulesAPI interface {
	ListSchedules(ctx context.Context) ([]domain.Schedule, error)
	GetSchedule(ctx context.Context, id int64, includeDetails bool) (*domain.Schedule, error)
	CreateDraftSchedule(ctx context.Context, meta ScheduleMeta) (*domain.Schedule, error)
	AddDetailsBatch(ctx context.Context, scheduleID int64, details []DetailRequest) ([]domain.ScheduleDetail, error)
	Publish(ctx context.Context, scheduleID int64) (*domain.PublishReport, error)
	GetConsolidated(ctx context.Context, scheduleID int64) (*domain.ConsolidatedSchedule, error)
}

// ScheduleMeta is the data needed to open a draft schedule upstream.
type ScheduleMeta struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
}

// DetailRequest is one planned assignment in a batch submission.
type DetailRequest struct {
	EmployeeID      string
	Date            string
	ShiftTemplateID int64
	Note            string
}

type SchedulesClient struct {
	baseClient
}

func NewSchedulesClient(baseURL string, timeout time.Duration, tokens TokenProvider) *SchedulesClient {
	return &SchedulesClient{baseClient: newBaseClient(baseURL, timeout, tokens)}
}

type horarioDetallePayload struct {
	ID            int64  `json:"id"`
	HorarioID     int64  `json:"horarioId"`
	UsuarioID     string `json:"usuarioId"`
	Fecha         string `json:"fecha"`
	TurnoID       int64  `json:"turnoId"`
	NombreTurno   string `json:"nombreTurno"`
	AsignacionID  *int64 `json:"asignacionId"`
	Estado        string `json:"estado"`
	Observaciones string `json:"observaciones"`
}

func (p horarioDetallePayload) toDetail() domain.ScheduleDetail {
	return domain.ScheduleDetail{
		ID:              p.ID,
		ScheduleID:      p.HorarioID,
		EmployeeID:      p.UsuarioID,
		Date:            p.Fecha,
		ShiftTemplateID: p.TurnoID,
		ShiftName:       p.NombreTurno,
		AssignmentID:    p.AsignacionID,
		Status:          domain.AssignmentStatus(p.Estado),
		Note:            p.Observaciones,
	}
}

type horarioPayload struct {
	ID               int64                   `json:"id"`
	Nombre           string                  `json:"nombre"`
	FechaInicio      string                  `json:"fechaInicio"`
	FechaFin         string                  `json:"fechaFin"`
	Estado           string                  `json:"estado"`
	Descripcion      string                  `json:"descripcion"`
	CreadoPor        string                  `json:"creadoPor"`
	CreadoEn         string                  `json:"creadoEn"`
	PublicadoEn      string                  `json:"publicadoEn"`
	CantidadDetalles int                     `json:"cantidadDetalles"`
	Detalles         []horarioDetallePayload `json:"detalles"`
}

func (p horarioPayload) toSchedule() domain.Schedule {
	s := domain.Schedule{
		ID:          p.ID,
		Name:        p.Nombre,
		Description: p.Descripcion,
		StartDate:   p.FechaInicio,
		EndDate:     p.FechaFin,
		State:       domain.ScheduleState(p.Estado),
		CreatedBy:   p.CreadoPor,
		PublishedAt: parseUpstreamTime(p.PublicadoEn),
		DetailCount: p.CantidadDetalles,
	}
	if t := parseUpstreamTime(p.CreadoEn); t != nil {
		s.CreatedAt = *t
	}
	if len(p.Detalles) > 0 {
		s.Details = make([]domain.ScheduleDetail, 0, len(p.Detalles))
		for _, d := range p.Detalles {
			s.Details = append(s.Details, d.toDetail())
		}
	}
	return s
}

func (c *SchedulesClient) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	payloads := []horarioPayload{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/horarios", nil, nil, &payloads); err != nil {
		return nil, err
	}

	schedules := make([]domain.Schedule, 0, len(payloads))
	for _, p := range payloads {
		schedules = append(schedules, p.toSchedule())
	}
	return schedules, nil
}

func (c *SchedulesClient) GetSchedule(ctx context.Context, id int64, includeDetails bool) (*domain.Schedule, error) {
	path := fmt.Sprintf("/api/horarios/%d", id)
	if includeDetails {
		path += "?incluirDetalles=true"
	}

	payload := horarioPayload{}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}

	s := payload.toSchedule()
	return &s, nil
}

func (c *SchedulesClient) CreateDraftSchedule(ctx context.Context, meta ScheduleMeta) (*domain.Schedule, error) {
	body := map[string]string{
		"nombre":      meta.Name,
		"descripcion": meta.Description,
		"fechaInicio": meta.StartDate,
		"fechaFin":    meta.EndDate,
	}

	payload := horarioPayload{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/horarios", nil, body, &payload); err != nil {
		return nil, err
	}

	s := payload.toSchedule()
	return &s, nil
}

func (c *SchedulesClient) AddDetailsBatch(ctx context.Context, scheduleID int64, details []DetailRequest) ([]domain.ScheduleDetail, error) {
	body := make([]map[string]any, 0, len(details))
	for _, d := range details {
		body = append(body, map[string]any{
			"usuarioId":     d.EmployeeID,
			"fecha":         d.Date,
			"turnoId":       d.ShiftTemplateID,
			"observaciones": d.Note,
		})
	}

	payloads := []horarioDetallePayload{}
	path := fmt.Sprintf("/api/horarios/%d/detalles/lote", scheduleID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &payloads); err != nil {
		return nil, err
	}

	created := make([]domain.ScheduleDetail, 0, len(payloads))
	for _, p := range payloads {
		created = append(created, p.toDetail())
	}
	return created, nil
}

type reportePayload struct {
	HorarioID       int64  `json:"horarioId"`
	NombreHorario   string `json:"nombreHorario"`
	TotalProcesados int    `json:"totalProcesados"`
	TotalExitosos   int    `json:"totalExitosos"`
	TotalFallidos   int    `json:"totalFallidos"`
	Exitosas        []struct {
		DetalleID    int64  `json:"detalleId"`
		AsignacionID int64  `json:"asignacionId"`
		UsuarioID    string `json:"usuarioId"`
		Fecha        string `json:"fecha"`
		NombreTurno  string `json:"nombreTurno"`
	} `json:"asignacionesExitosas"`
	Fallidas []struct {
		DetalleID   int64  `json:"detalleId"`
		UsuarioID   string `json:"usuarioId"`
		Fecha       string `json:"fecha"`
		TurnoID     int64  `json:"turnoId"`
		MotivoError string `json:"motivoError"`
	} `json:"asignacionesFallidas"`
}

// Publish converts the schedule's draft details into real assignments
// upstream. The returned report is adapted field for field; its counts are
// never recomputed here.
func (c *SchedulesClient) Publish(ctx context.Context, scheduleID int64) (*domain.PublishReport, error) {
	payload := reportePayload{}
	path := fmt.Sprintf("/api/horarios/%d/publicar", scheduleID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &payload); err != nil {
		return nil, err
	}

	report := &domain.PublishReport{
		ScheduleID:     payload.HorarioID,
		ScheduleName:   payload.NombreHorario,
		TotalProcessed: payload.TotalProcesados,
		TotalSuccess:   payload.TotalExitosos,
		TotalErrors:    payload.TotalFallidos,
		Successes:      []domain.PublishedDetail{},
		Failures:       []domain.FailedDetail{},
	}
	for _, s := range payload.Exitosas {
		report.Successes = append(report.Successes, domain.PublishedDetail{
			DetailID:     s.DetalleID,
			AssignmentID: s.AsignacionID,
			EmployeeID:   s.UsuarioID,
			Date:         s.Fecha,
			ShiftName:    s.NombreTurno,
		})
	}
	for _, f := range payload.Fallidas {
		report.Failures = append(report.Failures, domain.FailedDetail{
			DetailID:        f.DetalleID,
			EmployeeID:      f.UsuarioID,
			Date:            f.Fecha,
			ShiftTemplateID: f.TurnoID,
			Reason:          f.MotivoError,
		})
	}
	return report, nil
}

type asignacionPayload struct {
	ID            int64  `json:"id"`
	UsuarioID     string `json:"usuarioId"`
	TurnoID       int64  `json:"turnoId"`
	NombreTurno   string `json:"nombreTurno"`
	Fecha         string `json:"fecha"`
	HoraInicio    string `json:"horaInicio"`
	HoraFin       string `json:"horaFin"`
	Estado        string `json:"estado"`
	Observaciones string `json:"observaciones"`
}

func (p asignacionPayload) toAssignment() domain.Assignment {
	return domain.Assignment{
		ID:              p.ID,
		EmployeeID:      p.UsuarioID,
		ShiftTemplateID: p.TurnoID,
		ShiftName:       p.NombreTurno,
		Date:            p.Fecha,
		StartTime:       p.HoraInicio,
		EndTime:         p.HoraFin,
		Status:          domain.AssignmentStatus(p.Estado),
		Note:            p.Observaciones,
	}
}

type consolidadoPayload struct {
	Horario              horarioPayload                 `json:"horario"`
	AsignacionesPorFecha map[string][]asignacionPayload `json:"asignacionesPorFecha"`
	Estadisticas         struct {
		TotalPlanificadas        int     `json:"totalPlanificadas"`
		TotalConfirmadas         int     `json:"totalConfirmadas"`
		TotalCompletadas         int     `json:"totalCompletadas"`
		TotalCanceladas          int     `json:"totalCanceladas"`
		PorcentajeSincronizacion float64 `json:"porcentajeSincronizacion"`
	} `json:"estadisticas"`
}

func (c *SchedulesClient) GetConsolidated(ctx context.Context, scheduleID int64) (*domain.ConsolidatedSchedule, error) {
	payload := consolidadoPayload{}
	path := fmt.Sprintf("/api/horarios/%d/consolidado", scheduleID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}

	byDate := make(map[string][]domain.Assignment, len(payload.AsignacionesPorFecha))
	for date, items := range payload.AsignacionesPorFecha {
		assignments := make([]domain.Assignment, 0, len(items))
		for _, a := range items {
			assignments = append(assignments, a.toAssignment())
		}
		byDate[date] = assignments
	}

	return &domain.ConsolidatedSchedule{
		Schedule:          payload.Horario.toSchedule(),
		AssignmentsByDate: byDate,
		Statistics: domain.ScheduleStatistics{
			TotalPlanned:   payload.Estadisticas.TotalPlanificadas,
			TotalConfirmed: payload.Estadisticas.TotalConfirmadas,
			TotalCompleted: payload.Estadisticas.TotalCompletadas,
			TotalCancelled: payload.Estadisticas.TotalCanceladas,
			SyncPercentage: payload.Estadisticas.PorcentajeSincronizacion,
		},
	}, nil
}
