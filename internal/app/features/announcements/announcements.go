// internal/app/features/announcements/announcements.go
package announcements

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/mobilizabr/mobiliza/internal/app/system/authz"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/htmlsanitize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// announcementRow represents an announcement in the admin list.
type announcementRow struct {
	ID        string
	Content   template.HTML
	CreatedAt string
}

// ListVM is the view model for the announcements list.
type ListVM struct {
	viewdata.BaseVM
	Items   []announcementRow
	Success string
}

// List displays all announcements.
// GET /admin/announcements
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing announcements", err, "Não foi possível carregar os avisos.", "/admin/dashboard")
		return
	}

	rows := make([]announcementRow, 0, len(items))
	for _, a := range items {
		rows = append(rows, announcementRow{
			ID:        a.ID.Hex(),
			Content:   htmlsanitize.PrepareForDisplay(a.Content),
			CreatedAt: a.CreatedAt.Format("02/01/2006 15:04"),
		})
	}

	vm := ListVM{
		BaseVM: viewdata.NewBaseVM(r, "Avisos", "/admin/dashboard"),
		Items:  rows,
	}

	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "Aviso publicado."
	case "updated":
		vm.Success = "Aviso atualizado."
	case "deleted":
		vm.Success = "Aviso removido."
	}

	templates.Render(w, r, "announcements_list", vm)
}

// formVM is the view model for the new/edit announcement forms.
type formVM struct {
	formutil.Base
	ID      string
	Content string
}

// ShowNew displays the new announcement form.
// GET /admin/announcements/new
func (h *Handler) ShowNew(w http.ResponseWriter, r *http.Request) {
	data := formVM{}
	formutil.SetBase(&data.Base, r, "Novo aviso", "/admin/announcements")
	templates.Render(w, r, "announcement_form", data)
}

// Create publishes a new announcement to all leaders.
// POST /admin/announcements/new
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/admin/announcements")
		return
	}

	content := r.FormValue("content")
	_, _, authorID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "announcement create without user", nil, "Sessão expirada.", "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := h.Store.Create(ctx, models.Announcement{
		Content:        content,
		AuthorID:       authorID,
		TargetAudience: models.AudienceAllLeaders,
	})
	if err != nil {
		data := formVM{Content: content}
		formutil.SetBase(&data.Base, r, "Novo aviso", "/admin/announcements")
		data.SetError("Informe o conteúdo do aviso.")
		templates.Render(w, r, "announcement_form", data)
		return
	}

	http.Redirect(w, r, "/admin/announcements?success=created", http.StatusSeeOther)
}

// ShowEdit displays the edit form.
// GET /admin/announcements/{id}/edit
func (h *Handler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error loading announcement", err, "Não foi possível carregar o aviso.", "/admin/announcements")
		return
	}

	data := formVM{ID: a.ID.Hex(), Content: a.Content}
	formutil.SetBase(&data.Base, r, "Editar aviso", "/admin/announcements")
	templates.Render(w, r, "announcement_form", data)
}

// Update rewrites an announcement's content.
// POST /admin/announcements/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/admin/announcements")
		return
	}

	content := r.FormValue("content")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Update(ctx, id, content); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		data := formVM{ID: id.Hex(), Content: content}
		formutil.SetBase(&data.Base, r, "Editar aviso", "/admin/announcements")
		data.SetError("Informe o conteúdo do aviso.")
		templates.Render(w, r, "announcement_form", data)
		return
	}

	http.Redirect(w, r, "/admin/announcements?success=updated", http.StatusSeeOther)
}

// Delete removes an announcement.
// POST /admin/announcements/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error deleting announcement", err, "Não foi possível remover o aviso.", "/admin/announcements")
		return
	}

	http.Redirect(w, r, "/admin/announcements?success=deleted", http.StatusSeeOther)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "invalid announcement id", err, "Aviso inválido.", "/admin/announcements")
		return primitive.NilObjectID, false
	}
	return id, true
}
