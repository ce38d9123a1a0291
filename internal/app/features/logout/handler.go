// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/mobilizabr/mobiliza/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler owns the logout handler.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler constructs a logout Handler.
func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sessionMgr, Log: logger}
}

// MountRoutes mounts the logout route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Logout)
}

// Logout ends the session and returns to the landing page.
// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("failed to clear session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
