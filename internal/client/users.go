package client

import (
	"context"
	"net/http"
	"time"

	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
)

// UsersAPI is what the handlers need from the usuarios service.
type UsersAPI interface {
	GetAllUsers(ctx context.Context) ([]domain.Employee, error)
	GetUser(ctx context.Context, id string) (*domain.Employee, error)
}

type UsersClient struct {
	baseClient
}

func NewUsersClient(baseURL string, timeout time.Duration, tokens TokenProvider) *UsersClient {
	return &UsersClient{baseClient: newBaseClient(baseURL, timeout, tokens)}
}

// usuarioPayload is the usuarios service wire shape.
type usuarioPayload struct {
	KeycloakID     string `json:"keycloakId"`
	NombreCompleto string `json:"nombreCompleto"`
	CodigoEmpleado string `json:"codigoEmpleado"`
	Email          string `json:"email"`
	RolApp         string `json:"rolApp"`
}

func (p usuarioPayload) toEmployee() domain.Employee {
	return domain.Employee{
		ID:       p.KeycloakID,
		FullName: p.NombreCompleto,
		Code:     p.CodigoEmpleado,
		Email:    p.Email,
		Role:     domain.Role(p.RolApp),
	}
}

func (c *UsersClient) GetAllUsers(ctx context.Context) ([]domain.Employee, error) {
	payloads := []usuarioPayload{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/usuarios/todos", nil, nil, &payloads); err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(payloads))
	for _, p := range payloads {
		employees = append(employees, p.toEmployee())
	}
	return employees, nil
}

func (c *UsersClient) GetUser(ctx context.Context, id string) (*domain.Employee, error) {
	payload := usuarioPayload{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/usuarios/keycloak/"+id, nil, nil, &payload); err != nil {
		return nil, err
	}

	emp := payload.toEmployee()
	return &emp, nil
}
