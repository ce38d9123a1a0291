// internal/app/features/adminusers/edit.go
package adminusers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"

	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/brdoc"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type regionOption struct {
	ID   string
	Name string
}

type editVM struct {
	formutil.Base
	ID          string
	FullName    string
	Email       string
	CPF         string
	PhoneNumber string
	BirthDate   string
	RegionID    string
	UserRole    string
	Regions     []regionOption
}

func (h *Handler) loadRegionOptions(ctx context.Context) []regionOption {
	regions, err := h.Regions.List(ctx)
	if err != nil {
		h.Log.Warn("failed to load regions for admin edit form", zap.Error(err))
		return nil
	}
	opts := make([]regionOption, 0, len(regions))
	for _, reg := range regions {
		opts = append(opts, regionOption{ID: reg.ID.Hex(), Name: reg.Name})
	}
	return opts
}

// ShowEdit displays the core-info edit form for a user.
// GET /admin/users/{id}/edit
func (h *Handler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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

	data := editVM{
		ID:          user.ID.Hex(),
		FullName:    user.Name,
		Email:       user.Email,
		CPF:         user.CPF,
		PhoneNumber: user.PhoneNumber,
		BirthDate:   normalize.BirthDateBR(user.BirthDate),
		UserRole:    user.Role,
		Regions:     h.loadRegionOptions(ctx),
	}
	if user.RegionID != nil {
		data.RegionID = user.RegionID.Hex()
	}
	formutil.SetBase(&data.Base, r, "Editar usuário", "/admin/users")
	templates.Render(w, r, "admin_user_edit", data)
}

// Update rewrites a user's core info. When the user has a login and the
// email changed, the identity account's email is updated first; if that
// fails nothing else is touched, so login and profile emails never diverge.
// POST /admin/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/admin/users")
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	cpf := normalize.CPFDigits(r.FormValue("cpf"))
	phone := normalize.Phone(r.FormValue("phone_number"))
	birthDate := normalize.BirthDate(r.FormValue("birth_date"))
	regionRaw := r.FormValue("region_id")

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

	renderError := func(msg string) {
		data := editVM{
			ID:          id.Hex(),
			FullName:    fullName,
			Email:       email,
			CPF:         cpf,
			PhoneNumber: phone,
			BirthDate:   r.FormValue("birth_date"),
			RegionID:    regionRaw,
			UserRole:    user.Role,
			Regions:     h.loadRegionOptions(ctx),
		}
		formutil.SetBase(&data.Base, r, "Editar usuário", "/admin/users")
		data.SetError(msg)
		templates.Render(w, r, "admin_user_edit", data)
	}

	if fullName == "" {
		renderError("Informe o nome.")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		renderError("Informe um e-mail válido.")
		return
	}
	if cpf != "" && !brdoc.ValidCPF(cpf) {
		renderError("CPF inválido.")
		return
	}

	// Uniqueness pre-checks, excluding the user being edited.
	if taken, err := h.Users.EmailExistsForOther(ctx, email, id); err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking email", err, "Ocorreu um erro. Tente novamente.", "/admin/users")
		return
	} else if taken {
		renderError("Este e-mail pertence a outro usuário.")
		return
	}
	if cpf != "" {
		if taken, err := h.Users.CPFExistsForOther(ctx, cpf, id); err != nil {
			h.ErrLog.LogServerError(w, r, "database error checking cpf", err, "Ocorreu um erro. Tente novamente.", "/admin/users")
			return
		} else if taken {
			renderError("Este CPF pertence a outro usuário.")
			return
		}
	}

	var regionID *primitive.ObjectID
	if regionRaw != "" {
		oid, err := primitive.ObjectIDFromHex(regionRaw)
		if err != nil {
			renderError("Região inválida.")
			return
		}
		regionID = &oid
	}

	// Identity email first. The unique index on users backstops the
	// pre-check if another admin races this update.
	if user.HasLogin() && email != user.Email {
		if err := h.Identity.UpdateEmail(ctx, *user.AuthID, email); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to update identity email", err, "Não foi possível atualizar o e-mail de login.", "/admin/users")
			return
		}
	}

	err = h.Users.UpdateCoreInfo(ctx, id, userstore.CoreInfoUpdate{
		Name:        fullName,
		Email:       email,
		CPF:         cpf,
		PhoneNumber: phone,
		BirthDate:   birthDate,
		RegionID:    regionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrDuplicateEmail):
			renderError("Este e-mail pertence a outro usuário.")
		case errors.Is(err, userstore.ErrDuplicateCPF):
			renderError("Este CPF pertence a outro usuário.")
		default:
			h.ErrLog.LogServerError(w, r, "database error updating user", err, "Não foi possível salvar o usuário.", "/admin/users")
		}
		return
	}

	http.Redirect(w, r, "/admin/users?success=updated", http.StatusSeeOther)
}

// ChangeRole updates a user's role.
// POST /admin/users/{id}/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/admin/users")
		return
	}

	role := normalize.Role(r.FormValue("role"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		switch {
		case errors.Is(err, userstore.ErrLastAdmin):
			h.ErrLog.LogBadRequest(w, r, "attempt to demote last admin", nil, "Não é possível rebaixar o último administrador.", "/admin/users")
		case errors.Is(err, mongo.ErrNoDocuments):
			http.NotFound(w, r)
		default:
			h.ErrLog.LogServerError(w, r, "database error updating role", err, "Não foi possível atualizar o papel.", "/admin/users")
		}
		return
	}

	h.Log.Info("user role changed",
		zap.String("user_id", id.Hex()),
		zap.String("role", role))

	http.Redirect(w, r, "/admin/users?success=role", http.StatusSeeOther)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "invalid user id", err, "Usuário inválido.", "/admin/users")
		return primitive.NilObjectID, false
	}
	return id, true
}
