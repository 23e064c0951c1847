package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	h.successResponse(w, r, "employees fetched", employees)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	h.successResponse(w, r, "employee fetched", employee)
}
