// internal/app/features/supporters/routes.go
package supporters

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the public supporter registration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ShowForm)
	r.Post("/", h.Register)
}
