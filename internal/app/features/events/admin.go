// internal/app/features/events/admin.go
package events

import (
	"context"
	"errors"
	"net/http"

	eventstore "github.com/mobilizabr/mobiliza/internal/app/store/events"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/htmlsanitize"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type eventRow struct {
	ID          string
	Name        string
	Slug        string
	Date        string
	Location    string
	Registered  int64
}

// ListVM is the view model for the admin events list.
type ListVM struct {
	viewdata.BaseVM
	Items   []eventRow
	Success string
}

// List displays all events with registration counts.
// GET /admin/events
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing events", err, "Não foi possível carregar os eventos.", "/admin/dashboard")
		return
	}

	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		n, err := h.Registrations.CountByEvent(ctx, e.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error counting registrations", err, "Não foi possível carregar os eventos.", "/admin/dashboard")
			return
		}
		rows = append(rows, eventRow{
			ID:         e.ID.Hex(),
			Name:       e.Name,
			Slug:       e.Slug,
			Date:       e.EventDate,
			Location:   e.Location,
			Registered: n,
		})
	}

	vm := ListVM{
		BaseVM: viewdata.NewBaseVM(r, "Eventos", "/admin/dashboard"),
		Items:  rows,
	}

	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "Evento criado."
	case "updated":
		vm.Success = "Evento atualizado."
	case "deleted":
		vm.Success = "Evento removido."
	}

	templates.Render(w, r, "admin_events_list", vm)
}

// formVM is the view model for the new/edit event forms.
type formVM struct {
	formutil.Base
	ID          string
	EventName   string
	Date        string
	Location    string
	Description string
}

// ShowNew displays the new event form.
// GET /admin/events/new
func (h *AdminHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	data := formVM{}
	formutil.SetBase(&data.Base, r, "Novo evento", "/admin/events")
	templates.Render(w, r, "admin_event_form", data)
}

// Create creates a new event.
// POST /admin/events/new
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/admin/events")
		return
	}

	in := h.readForm(r)

	renderError := func(msg string) {
		data := in
		formutil.SetBase(&data.Base, r, "Novo evento", "/admin/events")
		data.SetError(msg)
		templates.Render(w, r, "admin_event_form", data)
	}

	if in.EventName == "" {
		renderError("Informe o nome do evento.")
		return
	}
	if in.Date == "" {
		renderError("Informe a data do evento.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := h.Events.Create(ctx, models.Event{
		Name:        in.EventName,
		EventDate:   in.Date,
		Location:    in.Location,
		Description: htmlsanitize.Sanitize(in.Description),
	})
	if err != nil {
		if errors.Is(err, eventstore.ErrDuplicateSlug) {
			renderError("Já existe um evento com um nome equivalente.")
			return
		}
		h.ErrLog.LogServerError(w, r, "database error creating event", err, "Não foi possível criar o evento.", "/admin/events")
		return
	}

	http.Redirect(w, r, "/admin/events?success=created", http.StatusSeeOther)
}

// ShowEdit displays the edit form for an event.
// GET /admin/events/{id}/edit
func (h *AdminHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error loading event", err, "Não foi possível carregar o evento.", "/admin/events")
		return
	}

	data := formVM{
		ID:          event.ID.Hex(),
		EventName:   event.Name,
		Date:        event.EventDate,
		Location:    event.Location,
		Description: event.Description,
	}
	formutil.SetBase(&data.Base, r, "Editar evento", "/admin/events")
	templates.Render(w, r, "admin_event_form", data)
}

// Update rewrites an event.
// POST /admin/events/{id}
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/admin/events")
		return
	}

	in := h.readForm(r)
	in.ID = id.Hex()

	renderError := func(msg string) {
		data := in
		formutil.SetBase(&data.Base, r, "Editar evento", "/admin/events")
		data.SetError(msg)
		templates.Render(w, r, "admin_event_form", data)
	}

	if in.EventName == "" {
		renderError("Informe o nome do evento.")
		return
	}
	if in.Date == "" {
		renderError("Informe a data do evento.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Events.Update(ctx, id, models.Event{
		Name:        in.EventName,
		EventDate:   in.Date,
		Location:    in.Location,
		Description: htmlsanitize.Sanitize(in.Description),
	})
	if err != nil {
		switch {
		case errors.Is(err, eventstore.ErrDuplicateSlug):
			renderError("Já existe um evento com um nome equivalente.")
		case errors.Is(err, mongo.ErrNoDocuments):
			http.NotFound(w, r)
		default:
			h.ErrLog.LogServerError(w, r, "database error updating event", err, "Não foi possível salvar o evento.", "/admin/events")
		}
		return
	}

	http.Redirect(w, r, "/admin/events?success=updated", http.StatusSeeOther)
}

// Delete removes an event.
// POST /admin/events/{id}/delete
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error deleting event", err, "Não foi possível remover o evento.", "/admin/events")
		return
	}

	http.Redirect(w, r, "/admin/events?success=deleted", http.StatusSeeOther)
}

type attendeeRow struct {
	Name         string
	Email        string
	PhoneNumber  string
	RegisteredAt string
}

// AttendeesVM is the view model for the attendee list.
type AttendeesVM struct {
	viewdata.BaseVM
	EventName string
	Items     []attendeeRow
}

// Attendees shows who registered for an event.
// GET /admin/events/{id}/attendees
func (h *AdminHandler) Attendees(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error loading event", err, "Não foi possível carregar o evento.", "/admin/events")
		return
	}

	attendees, err := h.Registrations.Attendees(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading attendees", err, "Não foi possível carregar os inscritos.", "/admin/events")
		return
	}

	rows := make([]attendeeRow, 0, len(attendees))
	for _, a := range attendees {
		rows = append(rows, attendeeRow{
			Name:         a.Name,
			Email:        a.Email,
			PhoneNumber:  a.PhoneNumber,
			RegisteredAt: a.RegisteredAt.Format("02/01/2006 15:04"),
		})
	}

	vm := AttendeesVM{
		BaseVM:    viewdata.NewBaseVM(r, "Inscritos - "+event.Name, "/admin/events"),
		EventName: event.Name,
		Items:     rows,
	}
	templates.Render(w, r, "admin_event_attendees", vm)
}

func (h *AdminHandler) readForm(r *http.Request) formVM {
	return formVM{
		EventName:   normalize.Name(r.FormValue("name")),
		Date:        normalize.Name(r.FormValue("event_date")),
		Location:    normalize.Name(r.FormValue("location")),
		Description: r.FormValue("description"),
	}
}

func (h *AdminHandler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "invalid event id", err, "Evento inválido.", "/admin/events")
		return primitive.NilObjectID, false
	}
	return id, true
}
