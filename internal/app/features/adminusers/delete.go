// internal/app/features/adminusers/delete.go
package adminusers

import (
	"context"
	"errors"
	"net/http"

	"github.com/mobilizabr/mobiliza/internal/app/system/authz"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Delete removes a user and everything hanging off them: referred users are
// orphaned (kept, attribution cleared), their event registrations are
// removed, and their login account is deleted when one exists. Ordered so a
// partial failure never leaves dangling references to a deleted row.
// POST /admin/users/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if _, _, selfID, ok := authz.UserCtx(r); ok && selfID == id {
		h.ErrLog.LogBadRequest(w, r, "admin attempted self-delete", nil, "Você não pode remover a sua própria conta.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error loading user", err, "Não foi possível carregar o usuário.", "/admin/users")
		return
	}

	orphanedUsers, err := h.Users.OrphanReferrals(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to orphan referrals", err, "Não foi possível remover o usuário.", "/admin/users")
		return
	}
	orphanedRegs, err := h.Registrations.OrphanLeader(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to orphan registrations", err, "Não foi possível remover o usuário.", "/admin/users")
		return
	}
	removedRegs, err := h.Registrations.DeleteByUser(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to delete registrations", err, "Não foi possível remover o usuário.", "/admin/users")
		return
	}

	// Provider tolerates a missing account, so a retry after a partial
	// failure here is safe.
	if user.HasLogin() {
		if err := h.Identity.Delete(ctx, *user.AuthID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to delete identity account", err, "Não foi possível remover a conta de acesso.", "/admin/users")
			return
		}
	}

	if err := h.Users.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to delete user", err, "Não foi possível remover o usuário.", "/admin/users")
		return
	}

	h.Log.Info("user deleted",
		zap.String("user_id", id.Hex()),
		zap.String("role", user.Role),
		zap.Int64("orphaned_users", orphanedUsers),
		zap.Int64("orphaned_registrations", orphanedRegs),
		zap.Int64("removed_registrations", removedRegs))

	http.Redirect(w, r, "/admin/users?success=deleted", http.StatusSeeOther)
}
