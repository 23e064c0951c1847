package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
	"github.com/turnapp-dev/scheduling-console/backend/internal/utils"
)

const activeTemplatesCacheKey = "shift_templates_active"

// GetActiveShiftTemplates serves the active shift templates, caching the
// upstream response in redis. A broken cache degrades to a fetch on every
// request instead of an error.
func (h *Handler) GetActiveShiftTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.activeShiftTemplates(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	h.successResponse(w, r, "active shift templates fetched", templates)
}

func (h *Handler) activeShiftTemplates(ctx context.Context) ([]domain.ShiftTemplate, error) {
	opTimeout := time.Duration(h.config.Redis.OperationTimeout) * time.Second

	redisCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if cached, err := h.redisClient.Get(redisCtx, activeTemplatesCacheKey).Result(); err == nil {
		templates, err := decodeCachedTemplates(cached)
		if err == nil {
			return templates, nil
		}
		slog.Warn("discarding unreadable shift template cache entry", "error", err)
	}

	templates, err := h.shifts.ListActiveShiftTemplates(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(templates); err == nil {
		redisCtx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		ttl := time.Duration(h.config.Redis.TemplateCacheTTL) * time.Second
		if err := h.redisClient.Set(redisCtx, activeTemplatesCacheKey, data, ttl).Err(); err != nil {
			slog.Warn("failed to cache shift templates", "error", err)
		}
	}

	return templates, nil
}

func decodeCachedTemplates(raw string) ([]domain.ShiftTemplate, error) {
	templates := []domain.ShiftTemplate{}
	if err := json.Unmarshal([]byte(raw), &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// GetAvailability exposes the turnos availability check for an arbitrary date
// and time window, outside of any wizard session.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	startTime := r.URL.Query().Get("startTime")
	endTime := r.URL.Query().Get("endTime")

	if err := utils.ValidateDateRange(date, date); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateTimeWindow(startTime, endTime); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	employees, err := h.shifts.UsersAvailableFor(r.Context(), date, startTime, endTime)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	h.successResponse(w, r, "available employees fetched", employees)
}
