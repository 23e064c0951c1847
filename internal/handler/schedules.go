package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
	"github.com/turnapp-dev/scheduling-console/backend/internal/schedule"
)

func (h *Handler) GetAllSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.schedules.ListSchedules(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedules fetched", schedules)
}

// GetScheduleCalendar renders a schedule's planned details as calendar events,
// colored per shift so overlapping shifts stay distinguishable.
func (h *Handler) GetScheduleCalendar(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid schedule id")
		return
	}

	sched, err := h.schedules.GetSchedule(r.Context(), scheduleID, true)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	templates, err := h.activeShiftTemplates(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	events := schedule.AggregateEvents(detailRecords(sched.Details), templates, schedule.ShiftColorPolicy)
	sortEvents(events)

	h.successResponse(w, r, "schedule calendar built", map[string]any{
		"schedule": sched,
		"events":   events,
	})
}

// GetConsolidatedSchedule merges the plan with the real assignments tracked by
// the turnos service. Events here are colored by dominant status, since the
// point of the view is sync state, not shift identity.
func (h *Handler) GetConsolidatedSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid schedule id")
		return
	}

	consolidated, err := h.schedules.GetConsolidated(r.Context(), scheduleID)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	templates, err := h.activeShiftTemplates(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	records := []domain.Assignment{}
	dates := make([]string, 0, len(consolidated.AssignmentsByDate))
	for date := range consolidated.AssignmentsByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		records = append(records, consolidated.AssignmentsByDate[date]...)
	}

	events := schedule.AggregateEvents(records, templates, schedule.StatusColorPolicy)
	sortEvents(events)

	h.successResponse(w, r, "consolidated schedule fetched", map[string]any{
		"consolidated": consolidated,
		"events":       events,
	})
}

// detailRecords adapts stored schedule details into the aggregator's record
// shape. Details carry no time window of their own; the aggregator fills it in
// from the shift template.
func detailRecords(details []domain.ScheduleDetail) []domain.Assignment {
	records := make([]domain.Assignment, 0, len(details))
	for _, d := range details {
		records = append(records, domain.Assignment{
			ID:              d.ID,
			EmployeeID:      d.EmployeeID,
			ShiftTemplateID: d.ShiftTemplateID,
			ShiftName:       d.ShiftName,
			Date:            d.Date,
			Status:          d.Status,
			Note:            d.Note,
		})
	}
	return records
}

func sortEvents(events []domain.CalendarEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].ShiftTemplateID < events[j].ShiftTemplateID
	})
}
