package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/turnapp-dev/scheduling-console/backend/internal/client"
	"github.com/turnapp-dev/scheduling-console/backend/internal/domain"
	"github.com/turnapp-dev/scheduling-console/backend/internal/schedule"
	"github.com/turnapp-dev/scheduling-console/backend/internal/session"
	"github.com/turnapp-dev/scheduling-console/backend/internal/utils"
)

var errAnchorOutsideRange = errors.New("anchor date is outside the schedule range")

func (h *Handler) CreateWizardSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required,max=100"`
		Description string `json:"description" validate:"max=500"`
		StartDate   string `json:"startDate" validate:"required"`
		EndDate     string `json:"endDate" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	dates, err := schedule.ExpandRange(req.StartDate, req.EndDate)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	createdBy := r.Context().Value(SubCtxKey).(string)
	sess := h.sessions.Create(req.Name, req.Description, req.StartDate, req.EndDate, createdBy, dates)

	h.successResponse(w, r, "wizard session created", h.sessionSnapshot(sess))
}

func (h *Handler) GetWizardSession(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)
	h.successResponse(w, r, "wizard session fetched", h.sessionSnapshot(sess))
}

func (h *Handler) CancelWizardSession(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)
	h.sessions.Delete(sess.ID)
	h.successResponse(w, r, "wizard session cancelled", nil)
}

// PreviewAssignmentDates resolves an assignment mode against the session's
// range without touching the draft, so the UI can show how many days a pick
// would cover.
func (h *Handler) PreviewAssignmentDates(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)

	mode, anchor, customDays, err := h.parseModeQuery(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	dates, err := h.resolveSessionDates(sess, mode, anchor, customDays)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "assignment dates resolved", map[string]any{
		"mode":  mode,
		"dates": dates,
		"count": len(dates),
	})
}

// GetAssignmentCandidates returns the employees the turnos service reports as
// available for one (date, shift) cell of the wizard.
func (h *Handler) GetAssignmentCandidates(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)

	date := r.URL.Query().Get("date")
	if !slices.Contains(sess.Dates, date) {
		h.errorResponse(w, r, "date is outside the schedule range")
		return
	}

	template, err := h.shiftTemplateFromQuery(r)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	if template == nil {
		h.errorResponse(w, r, "shift template does not exist or is inactive")
		return
	}

	employees, err := h.shifts.UsersAvailableFor(r.Context(), date, template.StartTime, template.EndTime)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	h.successResponse(w, r, "assignment candidates fetched", map[string]any{
		"candidates": employees,
		"assigned":   sess.AssignmentsByDateAndShift(date, template.ID),
	})
}

func (h *Handler) AddAssignments(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)

	var req struct {
		ShiftTemplateID int64    `json:"shiftTemplateID" validate:"required"`
		EmployeeIDs     []string `json:"employeeIDs" validate:"required,min=1,dive,required"`
		Mode            string   `json:"mode" validate:"required"`
		Anchor          string   `json:"anchor"`
		CustomDays      []int    `json:"customDays"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	mode, err := schedule.ParseAssignmentMode(req.Mode)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if mode == schedule.ModeCustom {
		if err := utils.ValidateCustomDays(req.CustomDays); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
	}

	dates, err := h.resolveSessionDates(sess, mode, req.Anchor, req.CustomDays)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	template, err := h.shiftTemplateByID(r.Context(), req.ShiftTemplateID)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	if template == nil {
		h.errorResponse(w, r, "shift template does not exist or is inactive")
		return
	}

	// Availability is re-checked per date rather than trusted from the
	// client; a pick made minutes ago may no longer hold.
	drafts := []domain.DraftAssignment{}
	rejected := []map[string]string{}
	for _, date := range dates {
		available, err := h.shifts.UsersAvailableFor(r.Context(), date, template.StartTime, template.EndTime)
		if err != nil {
			h.upstreamError(w, r, err)
			return
		}

		byID := make(map[string]*domain.Employee, len(available))
		for i := range available {
			byID[available[i].ID] = &available[i]
		}

		for _, employeeID := range req.EmployeeIDs {
			emp, ok := byID[employeeID]
			if !ok {
				rejected = append(rejected, map[string]string{
					"employeeID": employeeID,
					"date":       date,
					"reason":     "employee is not available on this date",
				})
				continue
			}
			drafts = append(drafts, domain.NewDraftAssignment(emp, template, date))
		}
	}

	added, skipped := sess.AddAssignments(drafts)

	h.successResponse(w, r, "assignments added to draft", map[string]any{
		"added":    added,
		"skipped":  skipped,
		"rejected": rejected,
		"total":    sess.Len(),
	})
}

func (h *Handler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)

	assignmentID := chi.URLParam(r, "assignmentID")
	sess.RemoveAssignment(assignmentID)

	h.successResponse(w, r, "assignment removed from draft", map[string]any{
		"total": sess.Len(),
	})
}

// GetWizardReview summarizes the draft before submission: assignments grouped
// per employee, the out-of-preference count, and the draft calendar events.
func (h *Handler) GetWizardReview(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)

	templates, err := h.activeShiftTemplates(r.Context())
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	records := draftRecords(sess.Assignments())
	events := schedule.AggregateEvents(records, templates, schedule.ShiftColorPolicy)

	h.successResponse(w, r, "wizard review built", map[string]any{
		"session":          h.sessionSnapshot(sess),
		"byEmployee":       sess.GroupedByEmployee(),
		"outOfPreference":  sess.OutOfPreferenceCount(),
		"events":           events,
		"totalAssignments": sess.Len(),
	})
}

func (h *Handler) SubmitWizard(w http.ResponseWriter, r *http.Request) {
	sess := r.Context().Value(SessionCtxKey).(*session.Session)

	assignments := sess.Assignments()
	if len(assignments) == 0 {
		h.errorResponse(w, r, "the draft has no assignments to publish")
		return
	}

	created, err := h.schedules.CreateDraftSchedule(r.Context(), client.ScheduleMeta{
		Name:        sess.Name,
		Description: sess.Description,
		StartDate:   sess.StartDate,
		EndDate:     sess.EndDate,
	})
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	details := make([]client.DetailRequest, 0, len(assignments))
	for _, a := range assignments {
		details = append(details, client.DetailRequest{
			EmployeeID:      a.EmployeeID,
			Date:            a.Date,
			ShiftTemplateID: a.ShiftTemplateID,
			Note:            a.Note,
		})
	}

	if _, err := h.schedules.AddDetailsBatch(r.Context(), created.ID, details); err != nil {
		h.upstreamError(w, r, err)
		return
	}

	report, err := h.schedules.Publish(r.Context(), created.ID)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	h.sendPublishReportMail(r, sess, report)

	// The draft served its purpose; the schedule now lives upstream.
	h.sessions.Delete(sess.ID)

	h.successResponse(w, r, "schedule published", report)
}

// sendPublishReportMail queues the confirmation email. Publication already
// succeeded upstream, so a queueing failure is logged instead of failing the
// request.
func (h *Handler) sendPublishReportMail(r *http.Request, sess *session.Session, report *domain.PublishReport) {
	email, _ := r.Context().Value(EmailCtxKey).(string)
	name, _ := r.Context().Value(NameCtxKey).(string)
	if email == "" {
		return
	}

	mailMessage := domain.MailMessage{
		Type: "schedule_published",
		To:   email,
		Data: domain.SchedulePublishedMailData{
			AdminName:      name,
			ScheduleName:   report.ScheduleName,
			StartDate:      sess.StartDate,
			EndDate:        sess.EndDate,
			TotalProcessed: report.TotalProcessed,
			TotalSuccess:   report.TotalSuccess,
			TotalErrors:    report.TotalErrors,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailQueue.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		h.logInternalServerError(r, err)
	}
}

// draftRecords adapts draft assignments into the aggregator's record shape.
// Drafts have no upstream id or status yet, so they all count as planned.
func draftRecords(drafts []domain.DraftAssignment) []domain.Assignment {
	records := make([]domain.Assignment, 0, len(drafts))
	for _, d := range drafts {
		records = append(records, domain.Assignment{
			EmployeeID:      d.EmployeeID,
			ShiftTemplateID: d.ShiftTemplateID,
			ShiftName:       d.ShiftName,
			Date:            d.Date,
			StartTime:       d.StartTime,
			EndTime:         d.EndTime,
			Status:          domain.StatusPlanned,
			Note:            d.Note,
		})
	}
	return records
}

func (h *Handler) sessionSnapshot(sess *session.Session) map[string]any {
	return map[string]any{
		"id":          sess.ID,
		"name":        sess.Name,
		"description": sess.Description,
		"startDate":   sess.StartDate,
		"endDate":     sess.EndDate,
		"dates":       sess.Dates,
		"createdBy":   sess.CreatedBy,
		"assignments": sess.Assignments(),
	}
}

func (h *Handler) parseModeQuery(r *http.Request) (schedule.AssignmentMode, string, []int, error) {
	mode, err := schedule.ParseAssignmentMode(r.URL.Query().Get("mode"))
	if err != nil {
		return "", "", nil, err
	}

	anchor := r.URL.Query().Get("anchor")

	customDays := []int{}
	if raw := r.URL.Query().Get("days"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			day, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return "", "", nil, fmt.Errorf("invalid day index %q", part)
			}
			customDays = append(customDays, day)
		}
	}
	if mode == schedule.ModeCustom {
		if err := utils.ValidateCustomDays(customDays); err != nil {
			return "", "", nil, err
		}
	}

	return mode, anchor, customDays, nil
}

func (h *Handler) resolveSessionDates(sess *session.Session, mode schedule.AssignmentMode, anchor string, customDays []int) ([]string, error) {
	if mode == schedule.ModeSingle && !slices.Contains(sess.Dates, anchor) {
		return nil, errAnchorOutsideRange
	}
	return schedule.ResolveDates(mode, sess.Dates, anchor, customDays)
}

// shiftTemplateFromQuery resolves the shiftTemplateID query parameter against
// the active templates; nil with a nil error means it is unknown.
func (h *Handler) shiftTemplateFromQuery(r *http.Request) (*domain.ShiftTemplate, error) {
	id, err := strconv.ParseInt(r.URL.Query().Get("shiftTemplateID"), 10, 64)
	if err != nil {
		return nil, nil
	}
	return h.shiftTemplateByID(r.Context(), id)
}

func (h *Handler) shiftTemplateByID(ctx context.Context, id int64) (*domain.ShiftTemplate, error) {
	templates, err := h.activeShiftTemplates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], nil
		}
	}
	return nil, nil
}
