// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the login routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ShowForm)
	r.Post("/", h.Submit)
}
