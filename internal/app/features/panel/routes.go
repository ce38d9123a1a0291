// internal/app/features/panel/routes.go
package panel

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the leader panel routes.
// All routes require a leader or admin session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Show)
}
