// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/authz"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const minPasswordLen = 6

type regionOption struct {
	ID   string
	Name string
}

type profileVM struct {
	formutil.Base
	FullName          string
	Email             string
	CPF               string
	PhoneNumber       string
	BirthDate         string
	RegionID          string
	Occupation        string
	Motivation        string
	ProfilePictureURL string
	ShowPassword      bool
	Regions           []regionOption
	Success           string
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request, ctx context.Context) (*models.User, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading profile", err, "Não foi possível carregar o seu perfil.", "/")
		return nil, false
	}
	return user, true
}

func (h *Handler) buildVM(ctx context.Context, r *http.Request, user *models.User) profileVM {
	vm := profileVM{
		FullName:          user.Name,
		Email:             user.Email,
		CPF:               user.CPF,
		PhoneNumber:       user.PhoneNumber,
		BirthDate:         normalize.BirthDateBR(user.BirthDate),
		Occupation:        user.Occupation,
		Motivation:        user.Motivation,
		ProfilePictureURL: user.ProfilePictureURL,
		ShowPassword:      user.HasLogin(),
	}
	if user.RegionID != nil {
		vm.RegionID = user.RegionID.Hex()
	}
	regions, err := h.Regions.List(ctx)
	if err != nil {
		h.Log.Warn("failed to load regions for profile form", zap.Error(err))
	}
	for _, reg := range regions {
		vm.Regions = append(vm.Regions, regionOption{ID: reg.ID.Hex(), Name: reg.Name})
	}
	formutil.SetBase(&vm.Base, r, "Meu perfil", "/panel")
	return vm
}

// Show renders the signed-in user's profile page.
// GET /profile
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}

	vm := h.buildVM(ctx, r, user)
	switch r.URL.Query().Get("success") {
	case "updated":
		vm.Success = "Perfil atualizado."
	case "avatar":
		vm.Success = "Foto de perfil atualizada."
	case "password":
		vm.Success = "Senha alterada."
	}

	templates.Render(w, r, "profile", vm)
}

// Update saves the user's own editable fields. Email, CPF, and role are not
// editable here; those go through an admin.
// POST /profile
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	phone := normalize.Phone(r.FormValue("phone_number"))
	birthDate := normalize.BirthDate(r.FormValue("birth_date"))
	occupation := strings.TrimSpace(r.FormValue("occupation"))
	motivation := strings.TrimSpace(r.FormValue("motivation"))
	regionRaw := r.FormValue("region_id")

	renderError := func(msg string) {
		vm := h.buildVM(ctx, r, user)
		vm.FullName = fullName
		vm.PhoneNumber = phone
		vm.BirthDate = r.FormValue("birth_date")
		vm.Occupation = occupation
		vm.Motivation = motivation
		vm.RegionID = regionRaw
		vm.SetError(msg)
		templates.Render(w, r, "profile", vm)
	}

	if fullName == "" {
		renderError("Informe o seu nome.")
		return
	}

	var regionID *primitive.ObjectID
	if regionRaw != "" {
		oid, err := primitive.ObjectIDFromHex(regionRaw)
		if err != nil {
			renderError("Região inválida.")
			return
		}
		found, err := h.Regions.Exists(ctx, oid)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error checking region", err, "Ocorreu um erro. Tente novamente.", "/profile")
			return
		}
		if !found {
			renderError("Região inválida.")
			return
		}
		regionID = &oid
	}

	err := h.Users.UpdateProfile(ctx, user.ID, userstore.ProfileUpdate{
		Name:        fullName,
		PhoneNumber: phone,
		BirthDate:   birthDate,
		RegionID:    regionID,
		Occupation:  occupation,
		Motivation:  motivation,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error updating profile", err, "Não foi possível salvar o perfil.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=updated", http.StatusSeeOther)
}

// ChangePassword verifies the current password before setting the new one.
// POST /profile/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, ok := h.currentUser(w, r, ctx)
	if !ok {
		return
	}
	if !user.HasLogin() {
		h.ErrLog.LogBadRequest(w, r, "password change without login account", nil, "Esta conta não possui senha.", "/profile")
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	renderError := func(msg string) {
		vm := h.buildVM(ctx, r, user)
		vm.SetError(msg)
		templates.Render(w, r, "profile", vm)
	}

	if len(newPassword) < minPasswordLen {
		renderError("A nova senha deve ter pelo menos 6 caracteres.")
		return
	}
	if newPassword != confirm {
		renderError("As senhas não conferem.")
		return
	}

	// Verify against the login email on the identity side, which is the
	// source of truth even if the profile email drifted.
	loginEmail, err := h.Identity.EmailByID(ctx, *user.AuthID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load login email", err, "Não foi possível alterar a senha.", "/profile")
		return
	}
	if _, err := h.Identity.VerifyPassword(ctx, loginEmail, current); err != nil {
		renderError("Senha atual incorreta.")
		return
	}

	if err := h.Identity.UpdatePassword(ctx, *user.AuthID, newPassword); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to update password", err, "Não foi possível alterar a senha.", "/profile")
		return
	}

	h.Log.Info("password changed", zap.String("user_id", user.ID.Hex()))
	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}
