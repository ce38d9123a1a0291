// internal/app/features/events/routes.go
package events

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the public event routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{slug}", h.ShowEvent)
	r.Post("/{slug}/register", h.Register)
}

// MountRoutes mounts the admin event routes.
// All routes require admin authentication.
func (h *AdminHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.ShowNew)
	r.Post("/new", h.Create)
	r.Get("/{id}/edit", h.ShowEdit)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/delete", h.Delete)
	r.Get("/{id}/attendees", h.Attendees)
}
