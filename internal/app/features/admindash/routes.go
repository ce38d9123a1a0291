// internal/app/features/admindash/routes.go
package admindash

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the admin dashboard routes.
// All routes require admin authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Show)
}
