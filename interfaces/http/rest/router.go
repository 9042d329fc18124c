package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"notes-backend/application/services"
	"notes-backend/infrastructure/config"
	"notes-backend/interfaces/http/rest/handlers"
	"notes-backend/interfaces/http/rest/middleware"
	"notes-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	noteService *services.NoteService
	tagResolver *services.TagResolver
	validator   *auth.JWTValidator
	cfg         *config.Config
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	noteService *services.NoteService,
	tagResolver *services.TagResolver,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		noteService: noteService,
		tagResolver: tagResolver,
		validator:   validator,
		cfg:         cfg,
		logger:      logger,
	}
}

// Setup configures all routes and middleware. Reads run under optional
// authentication so unauthenticated browsing works; every mutation
// requires a token. The services enforce ownership independently of
// the middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	authenticator := middleware.NewAuthenticator(rt.validator, rt.logger)
	noteHandler := handlers.NewNoteHandler(rt.noteService, rt.logger)
	tagHandler := handlers.NewTagHandler(rt.tagResolver, rt.logger)

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Optional())

			r.Get("/notes", noteHandler.ListNotes)
			r.Get("/notes/{noteID}", noteHandler.GetNote)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Require())

			r.Post("/notes", noteHandler.CreateNote)
			r.Put("/notes/{noteID}", noteHandler.UpdateNote)
			r.Delete("/notes/{noteID}", noteHandler.SoftDeleteNote)
			r.Patch("/notes/{noteID}/archive", noteHandler.ToggleArchive)
			r.Patch("/notes/{noteID}/restore", noteHandler.RestoreNote)
			r.Delete("/notes/{noteID}/permanent", noteHandler.PermanentDeleteNote)

			r.Post("/notes/{noteID}/attachments", noteHandler.AddAttachment)
			r.Delete("/notes/{noteID}/attachments/{attachmentID}", noteHandler.RemoveAttachment)

			r.Get("/notes/{noteID}/export/pdf", noteHandler.ExportNote)

			r.Get("/tags", tagHandler.ListTags)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
