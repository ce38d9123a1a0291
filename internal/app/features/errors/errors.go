// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/mobilizabr/mobiliza/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	role, name, _, signedIn := authz.UserCtx(r)

	data := pageData{
		Title:      "Acesso negado",
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    "Você não tem permissão para ver esta página.",
		BackURL:    "/",
	}

	templates.Render(w, r, "error_page", data)
}

// NotFound renders a friendly 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	role, name, _, signedIn := authz.UserCtx(r)

	w.WriteHeader(http.StatusNotFound)
	data := pageData{
		Title:      "Página não encontrada",
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    "A página que você procura não existe.",
		BackURL:    "/",
	}

	templates.Render(w, r, "error_page", data)
}
