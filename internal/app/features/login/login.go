// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type formData struct {
	formutil.Base
	Email  string
	Return string
}

// ShowForm renders the login form.
// GET /login
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	data := formData{Return: r.URL.Query().Get("return")}
	formutil.SetBase(&data.Base, r, "Entrar", "/")
	templates.Render(w, r, "login", data)
}

// Submit checks credentials and starts a session.
// POST /login
//
// Admins land on the admin dashboard, everyone else on the leader panel. A
// safe ?return= path wins over both.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	returnTo := r.FormValue("return")

	renderError := func(msg string) {
		data := formData{Email: email, Return: returnTo}
		formutil.SetBase(&data.Base, r, "Entrar", "/")
		data.SetError(msg)
		templates.Render(w, r, "login", data)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	accountID, err := h.Identity.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrBadCredentials) {
			renderError("E-mail ou senha incorretos.")
			return
		}
		h.ErrLog.LogServerError(w, r, "identity verification failed", err, "Ocorreu um erro. Tente novamente.", "/login")
		return
	}

	user, err := h.Users.GetByAuthID(ctx, accountID)
	if err != nil {
		// An identity account with no user row should not happen; treat
		// it as bad credentials rather than leaking the inconsistency.
		h.Log.Error("identity account has no user row",
			zap.String("account_id", accountID), zap.Error(err))
		renderError("E-mail ou senha incorretos.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to save session", err, "Ocorreu um erro. Tente novamente.", "/login")
		return
	}

	h.Log.Info("user logged in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	http.Redirect(w, r, destination(user.Role, returnTo), http.StatusSeeOther)
}

// destination picks the post-login landing page. Only same-site paths are
// accepted from ?return= to keep the redirect un-hijackable.
func destination(role, returnTo string) string {
	if returnTo != "" {
		if u, err := url.Parse(returnTo); err == nil &&
			u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/") {
			return returnTo
		}
	}
	if role == models.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/panel"
}
