// internal/app/features/passwordreset/routes.go
package passwordreset

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the password reset routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ShowRequestForm)
	r.Post("/", h.Request)
	r.Get("/confirm", h.ShowConfirmForm)
	r.Post("/confirm", h.Confirm)
}
