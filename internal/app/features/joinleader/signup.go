// internal/app/features/joinleader/signup.go
package joinleader

import (
	"context"
	"errors"
	"net/http"
	"net/mail"

	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/brdoc"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/saga"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const minPasswordLen = 6

type regionOption struct {
	ID   string
	Name string
}

type formData struct {
	formutil.Base
	FullName    string
	Email       string
	PhoneNumber string
	CPF         string
	BirthDate   string
	RegionID    string
	Occupation  string
	Motivation  string
	Regions     []regionOption
}

func (h *Handler) loadRegionOptions(ctx context.Context) []regionOption {
	regions, err := h.Regions.List(ctx)
	if err != nil {
		h.Log.Warn("failed to load regions for leader form", zap.Error(err))
		return nil
	}
	opts := make([]regionOption, 0, len(regions))
	for _, reg := range regions {
		opts = append(opts, regionOption{ID: reg.ID.Hex(), Name: reg.Name})
	}
	return opts
}

// ShowForm renders the leader sign-up form.
// GET /join
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := formData{Regions: h.loadRegionOptions(ctx)}
	formutil.SetBase(&data.Base, r, "Seja um líder", "/")
	templates.Render(w, r, "leader_signup", data)
}

// SignUp creates or upgrades a leader account.
// POST /join
//
// Three paths by email:
//  1. unknown email            -> identity account + new LEADER row
//  2. supporter without login  -> identity account + in-place upgrade,
//     keeping the row's ObjectID so referrals and registrations stay attached
//  3. anything else            -> rejected, the email already has an account
//
// Paths 1 and 2 run as sagas: if the user write fails, the freshly created
// identity account is deleted again.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/join")
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	phone := normalize.Phone(r.FormValue("phone_number"))
	cpf := normalize.CPFDigits(r.FormValue("cpf"))
	birthDate := normalize.BirthDate(r.FormValue("birth_date"))
	regionRaw := r.FormValue("region_id")
	occupation := normalize.Name(r.FormValue("occupation"))
	motivation := normalize.Name(r.FormValue("motivation"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	renderError := func(msg string) {
		data := formData{
			FullName:    fullName,
			Email:       email,
			PhoneNumber: phone,
			CPF:         cpf,
			BirthDate:   r.FormValue("birth_date"),
			RegionID:    regionRaw,
			Occupation:  occupation,
			Motivation:  motivation,
			Regions:     h.loadRegionOptions(ctx),
		}
		formutil.SetBase(&data.Base, r, "Seja um líder", "/")
		data.SetError(msg)
		templates.Render(w, r, "leader_signup", data)
	}

	if fullName == "" {
		renderError("Informe o seu nome.")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		renderError("Informe um e-mail válido.")
		return
	}
	if len(password) < minPasswordLen {
		renderError("A senha deve ter pelo menos 6 caracteres.")
		return
	}
	if !brdoc.ValidCPF(cpf) {
		renderError("CPF inválido.")
		return
	}

	var regionID *primitive.ObjectID
	if regionRaw != "" {
		oid, err := primitive.ObjectIDFromHex(regionRaw)
		if err != nil {
			renderError("Região inválida.")
			return
		}
		ok, err := h.Regions.Exists(ctx, oid)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error checking region", err, "Ocorreu um erro. Tente novamente.", "/join")
			return
		}
		if !ok {
			renderError("Região inválida.")
			return
		}
		regionID = &oid
	}

	existing, err := h.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Email already has a user row.
		if existing.Role != models.RoleSupporter || existing.HasLogin() {
			renderError("Este e-mail já possui uma conta. Faça login.")
			return
		}
		// CPF must not belong to a different user.
		taken, err := h.Users.CPFExistsForOther(ctx, cpf, existing.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error checking cpf", err, "Ocorreu um erro. Tente novamente.", "/join")
			return
		}
		if taken {
			renderError("Este CPF já está cadastrado.")
			return
		}
		h.upgradeSupporter(ctx, w, r, existing, signupInput{
			FullName: fullName, Email: email, Password: password,
			Phone: phone, CPF: cpf, BirthDate: birthDate,
			RegionID: regionID, Occupation: occupation, Motivation: motivation,
		}, renderError)

	case errors.Is(err, mongo.ErrNoDocuments):
		taken, err := h.Users.CPFExists(ctx, cpf)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error checking cpf", err, "Ocorreu um erro. Tente novamente.", "/join")
			return
		}
		if taken {
			renderError("Este CPF já está cadastrado.")
			return
		}
		h.createLeader(ctx, w, r, signupInput{
			FullName: fullName, Email: email, Password: password,
			Phone: phone, CPF: cpf, BirthDate: birthDate,
			RegionID: regionID, Occupation: occupation, Motivation: motivation,
		}, renderError)

	default:
		h.ErrLog.LogServerError(w, r, "database error looking up email", err, "Ocorreu um erro. Tente novamente.", "/join")
	}
}

type signupInput struct {
	FullName   string
	Email      string
	Password   string
	Phone      string
	CPF        string
	BirthDate  string
	RegionID   *primitive.ObjectID
	Occupation string
	Motivation string
}

// createLeader handles path 1: no user row exists for the email yet.
func (h *Handler) createLeader(ctx context.Context, w http.ResponseWriter, r *http.Request, in signupInput, renderError func(string)) {
	var (
		accountID string
		user      models.User
	)

	sg := saga.New(h.Log).
		AddStep(saga.Step{
			Name: "create identity account",
			Run: func(ctx context.Context) error {
				id, err := h.Identity.SignUp(ctx, in.Email, in.Password)
				if err != nil {
					return err
				}
				accountID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return h.Identity.Delete(ctx, accountID)
			},
		}).
		AddStep(saga.Step{
			Name: "create leader row",
			Run: func(ctx context.Context) error {
				u := models.User{
					AuthID:      &accountID,
					Name:        in.FullName,
					Email:       in.Email,
					CPF:         in.CPF,
					PhoneNumber: in.Phone,
					RegionID:    in.RegionID,
					Role:        models.RoleLeader,
					LeaderID:    h.resolveReferral(ctx, r),
					BirthDate:   in.BirthDate,
					Occupation:  in.Occupation,
					Motivation:  in.Motivation,
				}
				created, err := h.Users.Create(ctx, u)
				if err != nil {
					return err
				}
				user = created
				return nil
			},
		})

	if err := sg.Execute(ctx); err != nil {
		h.finishSignupError(w, r, err, renderError)
		return
	}

	h.finishSignup(w, r, user)
}

// upgradeSupporter handles path 2: a supporter row without a login gets
// promoted in place.
func (h *Handler) upgradeSupporter(ctx context.Context, w http.ResponseWriter, r *http.Request, existing *models.User, in signupInput, renderError func(string)) {
	var accountID string

	sg := saga.New(h.Log).
		AddStep(saga.Step{
			Name: "create identity account",
			Run: func(ctx context.Context) error {
				id, err := h.Identity.SignUp(ctx, in.Email, in.Password)
				if err != nil {
					return err
				}
				accountID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return h.Identity.Delete(ctx, accountID)
			},
		}).
		AddStep(saga.Step{
			Name: "upgrade supporter row",
			Run: func(ctx context.Context) error {
				return h.Users.UpgradeToLeader(ctx, existing.ID, userstore.LeaderUpgrade{
					AuthID:      accountID,
					Name:        in.FullName,
					PhoneNumber: in.Phone,
					CPF:         in.CPF,
					BirthDate:   in.BirthDate,
					RegionID:    in.RegionID,
					Occupation:  in.Occupation,
					Motivation:  in.Motivation,
				})
			},
			Compensate: func(ctx context.Context) error {
				return h.Users.ClearAuth(ctx, existing.ID)
			},
		})

	if err := sg.Execute(ctx); err != nil {
		h.finishSignupError(w, r, err, renderError)
		return
	}

	user := *existing
	user.AuthID = &accountID
	user.Role = models.RoleLeader
	h.finishSignup(w, r, user)
}

// resolveReferral returns the cookie leader's ID when it points at an actual
// leader, mirroring the public registration forms. A stale cookie yields no
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

func (h *Handler) finishSignupError(w http.ResponseWriter, r *http.Request, err error, renderError func(string)) {
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		renderError("Este e-mail já possui uma conta. Faça login.")
	case errors.Is(err, userstore.ErrDuplicateEmail):
		renderError("Este e-mail já está cadastrado.")
	case errors.Is(err, userstore.ErrDuplicateCPF):
		renderError("Este CPF já está cadastrado.")
	default:
		h.ErrLog.LogServerError(w, r, "leader sign-up failed", err, "Não foi possível concluir o cadastro. Tente novamente.", "/join")
	}
}

func (h *Handler) finishSignup(w http.ResponseWriter, r *http.Request, user models.User) {
	h.Referral.Clear(w)

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.Log.Error("failed to sign in after sign-up", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Log.Info("leader signed up",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email))

	http.Redirect(w, r, "/panel", http.StatusSeeOther)
}
