// internal/app/features/profile/avatar.go
package profile

import (
	"context"
	"net/http"
	"strings"

	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const maxAvatarBytes = 5 << 20

// UploadAvatar stores a new profile picture and points the user record at
// it. The previous picture is removed after the record is updated; a failed
// cleanup only leaks a file, never a broken image link.
// POST /profile/avatar
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "A imagem deve ter no máximo 5 MB.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	user, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil || header == nil || header.Size == 0 {
		h.ErrLog.LogBadRequest(w, r, "missing avatar file", err, "Selecione uma imagem.", "/profile")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		h.ErrLog.LogBadRequest(w, r, "avatar is not an image", nil, "A foto de perfil deve ser uma imagem.", "/profile")
		return
	}

	url, err := h.Avatars.Save(header.Filename, file)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to store avatar", err, "Não foi possível salvar a imagem.", "/profile")
		return
	}

	if err := h.Users.SetProfilePictureURL(ctx, user.ID, url); err != nil {
		if rmErr := h.Avatars.Remove(url); rmErr != nil {
			h.Log.Warn("failed to remove orphaned avatar", zap.String("url", url), zap.Error(rmErr))
		}
		h.ErrLog.LogServerError(w, r, "failed to update profile picture", err, "Não foi possível salvar a imagem.", "/profile")
		return
	}

	if user.ProfilePictureURL != "" {
		if err := h.Avatars.Remove(user.ProfilePictureURL); err != nil {
			h.Log.Warn("failed to remove old avatar", zap.String("url", user.ProfilePictureURL), zap.Error(err))
		}
	}

	http.Redirect(w, r, "/profile?success=avatar", http.StatusSeeOther)
}
