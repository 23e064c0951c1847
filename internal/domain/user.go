package domain

type Role string

const (
	RoleEmployee Role = "EMPLEADO"
	RoleAdmin    Role = "ADMINISTRADOR"
)

// Employee is the canonical shape every upstream user payload is adapted into
// at the client boundary, so the rest of the code never branches on which
// service a record came from.
type Employee struct {
	ID                string `json:"id"`
	FullName          string `json:"fullName"`
	Code              string `json:"code"`
	Email             string `json:"email"`
	Role              Role   `json:"role"`
	HasPreference     bool   `json:"hasPreference"`
	MatchesPreference bool   `json:"matchesPreference"`
}
