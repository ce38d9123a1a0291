// internal/app/features/supporters/register.go
package supporters

import (
	"context"
	"errors"
	"net/http"
	"net/mail"

	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type regionOption struct {
	ID   string
	Name string
}

type formData struct {
	formutil.Base
	FullName    string
	Email       string
	PhoneNumber string
	RegionID    string
	BirthDate   string
	Occupation  string
	Regions     []regionOption
}

func (h *Handler) loadRegionOptions(ctx context.Context) []regionOption {
	regions, err := h.Regions.List(ctx)
	if err != nil {
		h.Log.Warn("failed to load regions for supporter form", zap.Error(err))
		return nil
	}
	opts := make([]regionOption, 0, len(regions))
	for _, reg := range regions {
		opts = append(opts, regionOption{ID: reg.ID.Hex(), Name: reg.Name})
	}
	return opts
}

// ShowForm renders the public supporter registration form.
// GET /register
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := formData{Regions: h.loadRegionOptions(ctx)}
	formutil.SetBase(&data.Base, r, "Cadastro de apoiador", "/")
	templates.Render(w, r, "supporter_register", data)
}

// Register creates a supporter from the public form.
// POST /register
//
// Referral attribution comes from the signed referral cookie, not the form,
// so a supporter cannot pick their own leader.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/register")
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	phone := normalize.Phone(r.FormValue("phone_number"))
	regionRaw := r.FormValue("region_id")
	birthDate := normalize.BirthDate(r.FormValue("birth_date"))
	occupation := normalize.Name(r.FormValue("occupation"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	renderError := func(msg string) {
		data := formData{
			FullName:    fullName,
			Email:       email,
			PhoneNumber: phone,
			RegionID:    regionRaw,
			BirthDate:   r.FormValue("birth_date"),
			Occupation:  occupation,
			Regions:     h.loadRegionOptions(ctx),
		}
		formutil.SetBase(&data.Base, r, "Cadastro de apoiador", "/")
		data.SetError(msg)
		templates.Render(w, r, "supporter_register", data)
	}

	if fullName == "" {
		renderError("Informe o seu nome.")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		renderError("Informe um e-mail válido.")
		return
	}
	if phone == "" {
		renderError("Informe o seu telefone.")
		return
	}
	if regionRaw == "" {
		renderError("Selecione a sua região.")
		return
	}

	oid, err := primitive.ObjectIDFromHex(regionRaw)
	if err != nil {
		renderError("Região inválida.")
		return
	}
	ok, err := h.Regions.Exists(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking region", err, "Ocorreu um erro. Tente novamente.", "/register")
		return
	}
	if !ok {
		renderError("Região inválida.")
		return
	}

	u := models.User{
		Name:        fullName,
		Email:       email,
		PhoneNumber: phone,
		RegionID:    &oid,
		BirthDate:   birthDate,
		Occupation:  occupation,
		Role:        models.RoleSupporter,
		LeaderID:    h.resolveReferral(ctx, r),
	}

	if _, err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			renderError("Este e-mail já está cadastrado.")
			return
		}
		h.ErrLog.LogServerError(w, r, "database error creating supporter", err, "Ocorreu um erro. Tente novamente.", "/register")
		return
	}

	h.Referral.Clear(w)

	data := struct {
		viewdata.BaseVM
		Name string
	}{
		BaseVM: viewdata.NewBaseVM(r, "Cadastro concluído", "/"),
		Name:   fullName,
	}
	templates.Render(w, r, "supporter_registered", data)
}

// resolveReferral returns the cookie leader's ID when it points at an actual
// leader. A stale cookie pointing at a demoted or deleted leader yields no
// attribution.
func (h *Handler) resolveReferral(ctx context.Context, r *http.Request) *primitive.ObjectID {
	ref := h.Referral.LeaderID(r)
	if ref == nil {
		return nil
	}
	if _, err := h.Users.GetLeaderByID(ctx, *ref); err != nil {
		return nil
	}
	return ref
}
