package public

import (
	"log"

	"github.com/go-chi/chi/v5"
	contactapp "github.com/sngm3741/contact-form/api/internal/contact/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger      *log.Logger
	submissions contactapp.SubmissionService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger      *log.Logger
	Submissions contactapp.SubmissionService
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:      cfg.Logger,
		submissions: cfg.Submissions,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submit", h.submitHandler())
}
