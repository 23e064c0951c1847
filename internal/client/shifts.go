package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
)

// ShiftsAPI is what the handlers need from the turnos service.
type ShiftsAPI interface {
	ListActiveShiftTemplates(ctx context.Context) ([]domain.ShiftTemplate, error)
	UsersAvailableFor(ctx context.Context, date, startTime, endTime string) ([]domain.Employee, error)
}

type ShiftsClient struct {
	baseClient
}

func NewShiftsClient(baseURL string, timeout time.Duration, tokens TokenProvider) *ShiftsClient {
	return &ShiftsClient{baseClient: newBaseClient(baseURL, timeout, tokens)}
}

type turnoPayload struct {
	ID            int64  `json:"id"`
	Nombre        string `json:"nombre"`
	HoraInicio    string `json:"horaInicio"`
	HoraFin       string `json:"horaFin"`
	DuracionTotal int32  `json:"duracionTotal"`
	Estado        string `json:"estado"`
}

func (p turnoPayload) toShiftTemplate() domain.ShiftTemplate {
	return domain.ShiftTemplate{
		ID:              p.ID,
		Name:            p.Nombre,
		StartTime:       p.HoraInicio,
		EndTime:         p.HoraFin,
		DurationMinutes: p.DuracionTotal,
		State:           domain.ShiftTemplateState(p.Estado),
	}
}

func (c *ShiftsClient) ListActiveShiftTemplates(ctx context.Context) ([]domain.ShiftTemplate, error) {
	payloads := []turnoPayload{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/turnos/activos", nil, nil, &payloads); err != nil {
		return nil, err
	}

	templates := make([]domain.ShiftTemplate, 0, len(payloads))
	for _, p := range payloads {
		templates = append(templates, p.toShiftTemplate())
	}
	return templates, nil
}

// usuarioDisponiblePayload is the availability endpoint's wire shape. It
// already folds in the preference check for the requested window.
type usuarioDisponiblePayload struct {
	KeycloakID         string `json:"keycloakId"`
	NombreCompleto     string `json:"nombreCompleto"`
	CodigoEmpleado     string `json:"codigoEmpleado"`
	RolApp             string `json:"rolApp"`
	TienePreferencias  bool   `json:"tienePreferencias"`
	CumplePreferencias bool   `json:"cumplePreferencias"`
}

// UsersAvailableFor asks the turnos service which employees can take a shift
// on the given date and time window. The service excludes employees already
// assigned that day and evaluates their configured preferences.
func (c *ShiftsClient) UsersAvailableFor(ctx context.Context, date, startTime, endTime string) ([]domain.Employee, error) {
	query := url.Values{}
	query.Set("fecha", date)
	query.Set("horaInicio", startTime)
	query.Set("horaFin", endTime)

	payloads := []usuarioDisponiblePayload{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/disponibilidades/usuarios-disponibles", query, nil, &payloads); err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(payloads))
	for _, p := range payloads {
		employees = append(employees, domain.Employee{
			ID:                p.KeycloakID,
			FullName:          p.NombreCompleto,
			Code:              p.CodigoEmpleado,
			Role:              domain.Role(p.RolApp),
			HasPreference:     p.TienePreferencias,
			MatchesPreference: p.CumplePreferencias,
		})
	}
	return employees, nil
}
