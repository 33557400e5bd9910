package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborlabs/contact-directory/internal/application"
	"github.com/harborlabs/contact-directory/internal/domain"
)

// Handler is the HTTP adapter entrypoint for the directory use-cases.
// Keeping only the application dependency here preserves adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the public routes and middleware stack. Listing is
// anonymous; every other contact route requires a bearer token, and delete
// additionally requires the ExcluirContato claim.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/openapi.yaml", handler.swaggerSpec)
	r.Get("/swagger/*", swaggerHandler())

	r.Post("/registro", handler.register)
	r.Post("/login", handler.login)

	r.Route("/contato", func(r chi.Router) {
		r.Get("/", handler.listContacts)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/", handler.createContact)
			r.Get("/{id}", handler.getContact)
			r.Put("/{id}", handler.updateContact)

			r.Group(func(r chi.Router) {
				r.Use(handler.requirePolicy(domain.PolicyExcluirContato))
				r.Delete("/{id}", handler.deleteContact)
			})
		})
	})

	return r
}
