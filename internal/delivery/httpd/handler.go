package httpd

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/events"
	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/service"
	"github.com/Erkin33/Platform-sub000/internal/service/review"
	"github.com/Erkin33/Platform-sub000/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Subscriber is the part of the event broker the stream endpoint needs.
type Subscriber interface {
	Subscribe(fn events.Listener) func()
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// maxJSONBodySize caps request bodies that carry no file payloads.
const maxJSONBodySize = 1 << 20

type Options struct {
	Actor          ActorResolver
	RequestTimeout time.Duration
	MaxUploadSize  int64
	// Pinger is checked by /health when set.
	Pinger Pinger
}

type Handler struct {
	criterionService  service.CriterionService
	submissionService service.SubmissionService
	reviewService     service.ReviewService
	scoreService      service.ScoreService
	adjustmentService service.AdjustmentService
	fileService       service.FileService
	subscriber        Subscriber
	validate          *validator.Validate
	options           Options
	logger            zerolog.Logger
}

func NewHandler(
	criterionService service.CriterionService,
	submissionService service.SubmissionService,
	reviewService service.ReviewService,
	scoreService service.ScoreService,
	adjustmentService service.AdjustmentService,
	fileService service.FileService,
	subscriber Subscriber,
	options Options,
	logger zerolog.Logger,
) *Handler {
	if options.Actor == nil {
		options.Actor = HeaderActor
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = 60 * time.Second
	}
	if options.MaxUploadSize <= 0 {
		options.MaxUploadSize = 32 << 20
	}

	return &Handler{
		criterionService:  criterionService,
		submissionService: submissionService,
		reviewService:     reviewService,
		scoreService:      scoreService,
		adjustmentService: adjustmentService,
		fileService:       fileService,
		subscriber:        subscriber,
		validate:          validator.New(),
		options:           options,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(WithActor(h.options.Actor))

		// Long-lived stream, kept out of the request timeout.
		api.With(RequireRoles()).Get("/events", h.StreamEvents)

		api.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(h.options.RequestTimeout))

			r.Get("/criteria", h.ListCriteria)
			r.Get("/criteria/{id}", h.GetCriterion)

			r.Group(func(r chi.Router) {
				r.Use(RequireRoles())

				r.Route("/submissions", func(r chi.Router) {
					r.Post("/", h.CreateSubmission)
					r.With(RequireRoles(reviewerRoles...)).Get("/", h.ListSubmissions)
					r.Get("/{id}", h.GetSubmission)
					r.Get("/{id}/history", h.GetSubmissionHistory)
					r.With(RequireRoles(reviewerRoles...)).Post("/{id}/review", h.ReviewSubmission)
				})

				r.With(RequireRoles(reviewerRoles...)).Get("/moderation", h.ModerationQueue)

				r.Route("/students/{id}", func(r chi.Router) {
					r.Get("/submissions", h.GetStudentSubmissions)
					r.Get("/submissions/{criterionId}", h.GetCurrentSubmission)
					r.Get("/score", h.GetStudentScore)
					r.Get("/score/breakdown", h.GetScoreBreakdown)
					r.Get("/adjustments", h.GetStudentAdjustments)
				})

				r.Route("/adjustments", func(r chi.Router) {
					r.Use(RequireRoles(models.RoleAdmin))
					r.Post("/", h.CreateAdjustment)
					r.Delete("/{id}", h.DeleteAdjustment)
				})

				r.Get("/files/{hash}", h.GetFile)
			})
		})
	})
}

var reviewerRoles = []models.Role{models.RoleTutor, models.RoleDeputy, models.RoleDean, models.RoleAdmin}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "social-review-service",
		"timestamp": time.Now().UTC(),
	}

	if h.options.Pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.options.Pinger.Ping(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Health check failed")
			response["status"] = "unhealthy"
			utils.WriteJSON(w, http.StatusServiceUnavailable, response)
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, response)
}

// canViewStudent keeps students to their own records; staff see everyone.
func canViewStudent(actor models.Actor, studentID string) bool {
	return actor.Role != models.RoleStudent || actor.ID == studentID
}

func currentActor(r *http.Request) models.Actor {
	actor, _ := ActorFromContext(r.Context())
	return actor
}

func pathInt(r *http.Request, key string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		return 0, false
	}
	return v, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *review.TransitionError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, models.ErrSubmissionNotFound),
		errors.Is(err, models.ErrCriterionNotFound),
		errors.Is(err, models.ErrFileNotFound):
		utils.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrRoleNotAllowed):
		utils.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.As(err, &transitionErr), errors.Is(err, models.ErrInvalidTransition):
		utils.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrVersionConflict):
		utils.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidInput), errors.As(err, &validationErrs):
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		logger := LoggerFromContext(r.Context())
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Service error")
		utils.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
