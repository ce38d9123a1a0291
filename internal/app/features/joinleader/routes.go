// internal/app/features/joinleader/routes.go
package joinleader

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the leader sign-up routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ShowForm)
	r.Post("/", h.SignUp)
}
