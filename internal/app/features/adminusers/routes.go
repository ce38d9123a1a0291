// internal/app/features/adminusers/routes.go
package adminusers

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the admin user management routes.
// All routes require admin authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}/edit", h.ShowEdit)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/role", h.ChangeRole)
	r.Post("/{id}/delete", h.Delete)
}
