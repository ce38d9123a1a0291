// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the profile routes. All routes require a signed-in
// user; role does not matter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Show)
	r.Post("/", h.Update)
	r.Post("/avatar", h.UploadAvatar)
	r.Post("/password", h.ChangePassword)
}
