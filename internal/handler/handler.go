package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/turnapp-dev/scheduling-console/backend/internal/client"
	"github.com/turnapp-dev/scheduling-console/backend/internal/config"
	"github.com/turnapp-dev/scheduling-console/backend/internal/session"
)

// MailQueue is the slice of the AMQP channel the handlers use. *amqp.Channel
// satisfies it.
type MailQueue interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	translator  ut.Translator
	users       client.UsersAPI
	shifts      client.ShiftsAPI
	schedules   client.SchedulesAPI
	sessions    *session.Manager
	mailQueue   MailQueue
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	users client.UsersAPI,
	shifts client.ShiftsAPI,
	schedules client.SchedulesAPI,
	sessions *session.Manager,
	mailQueue MailQueue,
	rdb *redis.Client,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		translator:  trans,
		users:       users,
		shifts:      shifts,
		schedules:   schedules,
		sessions:    sessions,
		mailQueue:   mailQueue,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// everything requires an identity-provider token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/shift-templates", h.GetActiveShiftTemplates)
		r.Get("/availability", h.GetAvailability)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.GetAllEmployees)
			r.Get("/{id}", h.GetEmployee)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.GetAllSchedules)
			r.Get("/{id}/calendar", h.GetScheduleCalendar)
			r.Get("/{id}/consolidated", h.GetConsolidatedSchedule)
		})

		// the scheduling wizard is admin-only
		r.Route("/wizard", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/", h.CreateWizardSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(h.wizardSession)
				r.Get("/", h.GetWizardSession)
				r.Delete("/", h.CancelWizardSession)
				r.Get("/dates", h.PreviewAssignmentDates)
				r.Get("/candidates", h.GetAssignmentCandidates)
				r.Post("/assignments", h.AddAssignments)
				r.Delete("/assignments/{assignmentID}", h.RemoveAssignment)
				r.Get("/review", h.GetWizardReview)
				r.Post("/submit", h.SubmitWizard)
			})
		})
	})
}
