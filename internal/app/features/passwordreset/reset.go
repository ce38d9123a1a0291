// internal/app/features/passwordreset/reset.go
package passwordreset

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	resettokenstore "github.com/mobilizabr/mobiliza/internal/app/store/resettokens"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/mailer"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const minPasswordLen = 6

type requestForm struct {
	formutil.Base
	Email string
}

type confirmForm struct {
	formutil.Base
	Token string
}

// ShowRequestForm renders the "forgot password" form.
// GET /password-reset
func (h *Handler) ShowRequestForm(w http.ResponseWriter, r *http.Request) {
	data := requestForm{}
	formutil.SetBase(&data.Base, r, "Redefinir senha", "/login")
	templates.Render(w, r, "reset_request", data)
}

// Request issues a reset token and emails the link. The response is the same
// whether or not the email has an account, so the form cannot be used to
// probe which emails are registered.
// POST /password-reset
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/password-reset")
		return
	}

	email := normalize.Email(r.FormValue("email"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.issueAndSend(ctx, email)

	data := struct {
		viewdata.BaseVM
	}{viewdata.NewBaseVM(r, "Verifique seu e-mail", "/login")}
	templates.Render(w, r, "reset_sent", data)
}

// issueAndSend does the actual work behind the always-identical response.
func (h *Handler) issueAndSend(ctx context.Context, email string) {
	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("database error looking up reset email", zap.Error(err))
		}
		return
	}
	if !user.HasLogin() {
		// Supporters without a login have no password to reset.
		return
	}

	tok, err := h.Tokens.Issue(ctx, *user.AuthID)
	if err != nil {
		h.Log.Error("failed to issue reset token", zap.Error(err))
		return
	}

	link := h.BaseURL + "/password-reset/confirm?token=" + url.QueryEscape(tok.Token)
	msg := mailer.BuildPasswordResetEmail(mailer.PasswordResetData{
		SiteName:  viewdata.SiteName,
		Name:      user.Name,
		ResetLink: link,
		ExpiresIn: "1 hora",
	})
	msg.To = user.Email

	if err := h.Mailer.Send(msg); err != nil {
		h.Log.Error("failed to send reset email", zap.Error(err), zap.String("email", user.Email))
	}
}

// ShowConfirmForm renders the new-password form after checking the token is
// still alive.
// GET /password-reset/confirm?token=...
func (h *Handler) ShowConfirmForm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tokens.Peek(ctx, token); err != nil {
		if errors.Is(err, resettokenstore.ErrInvalidToken) {
			h.renderInvalidToken(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error checking reset token", err, "Ocorreu um erro. Tente novamente.", "/login")
		return
	}

	data := confirmForm{Token: token}
	formutil.SetBase(&data.Base, r, "Escolha uma nova senha", "/login")
	templates.Render(w, r, "reset_confirm", data)
}

// Confirm consumes the token and sets the new password.
// POST /password-reset/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/password-reset")
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	renderError := func(msg string) {
		data := confirmForm{Token: token}
		formutil.SetBase(&data.Base, r, "Escolha uma nova senha", "/login")
		data.SetError(msg)
		templates.Render(w, r, "reset_confirm", data)
	}

	if len(password) < minPasswordLen {
		renderError("A senha deve ter pelo menos 6 caracteres.")
		return
	}
	if password != confirm {
		renderError("As senhas não conferem.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	accountID, err := h.Tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, resettokenstore.ErrInvalidToken) {
			h.renderInvalidToken(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error consuming reset token", err, "Ocorreu um erro. Tente novamente.", "/login")
		return
	}

	if err := h.Identity.UpdatePassword(ctx, accountID, password); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to update password", err, "Ocorreu um erro. Tente novamente.", "/login")
		return
	}

	h.Log.Info("password reset completed", zap.String("account_id", accountID))

	data := struct {
		viewdata.BaseVM
	}{viewdata.NewBaseVM(r, "Senha redefinida", "/login")}
	templates.Render(w, r, "reset_done", data)
}

func (h *Handler) renderInvalidToken(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{viewdata.NewBaseVM(r, "Link inválido", "/login")}
	templates.Render(w, r, "reset_invalid", data)
}
