// internal/app/features/events/public.go
package events

import (
	"context"
	"errors"
	"net/http"
	"net/mail"

	registrationstore "github.com/mobilizabr/mobiliza/internal/app/store/registrations"
	"github.com/mobilizabr/mobiliza/internal/app/system/action"
	"github.com/mobilizabr/mobiliza/internal/app/system/formutil"
	"github.com/mobilizabr/mobiliza/internal/app/system/htmlsanitize"
	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"html/template"
)

type regionOption struct {
	ID   string
	Name string
}

type eventPageData struct {
	formutil.Base
	EventName   string
	Slug        string
	Date        string
	Location    string
	Description template.HTML
	FullName    string
	Email       string
	PhoneNumber string
	RegionID    string
	Regions     []regionOption
	Result      *action.Result
}

// ShowEvent renders the public event page with its registration form.
// GET /events/{slug}
func (h *Handler) ShowEvent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	event, err := h.Events.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error loading event", err, "Ocorreu um erro. Tente novamente.", "/")
		return
	}

	data := h.pageData(r, event)
	data.Regions = h.loadRegionOptions(ctx)
	templates.Render(w, r, "event_page", data)
}

func (h *Handler) loadRegionOptions(ctx context.Context) []regionOption {
	regions, err := h.Regions.List(ctx)
	if err != nil {
		h.Log.Warn("failed to load regions for event form", zap.Error(err))
		return nil
	}
	opts := make([]regionOption, 0, len(regions))
	for _, reg := range regions {
		opts = append(opts, regionOption{ID: reg.ID.Hex(), Name: reg.Name})
	}
	return opts
}

// Register signs a visitor up for an event.
// POST /events/{slug}/register
//
// Unknown emails get a supporter row created on the spot, carrying the
// referral cookie's attribution. Registering twice is not an error: the
// second submit reports success with an "already registered" message, so
// refreshing or resubmitting the form is harmless.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/events/"+slug)
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	phone := normalize.Phone(r.FormValue("phone_number"))
	regionRaw := r.FormValue("region_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	event, err := h.Events.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "database error loading event", err, "Ocorreu um erro. Tente novamente.", "/")
		return
	}

	render := func(res action.Result) {
		data := h.pageData(r, event)
		data.Regions = h.loadRegionOptions(ctx)
		data.FullName = fullName
		data.Email = email
		data.PhoneNumber = phone
		data.RegionID = regionRaw
		data.Result = &res
		templates.Render(w, r, "event_page", data)
	}

	if fullName == "" {
		render(action.Fail("Informe o seu nome."))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		render(action.Fail("Informe um e-mail válido."))
		return
	}

	res, err := h.register(ctx, r, event, fullName, email, phone, regionRaw)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "event registration failed", err, "Ocorreu um erro. Tente novamente.", "/events/"+slug)
		return
	}
	if res.Success {
		h.Referral.Clear(w)
	}
	render(res)
}

// register resolves the registrant's user row (creating a supporter when the
// email is new) and inserts the registration. First-time emails must bring
// the full supporter fields; known emails only need the address.
func (h *Handler) register(ctx context.Context, r *http.Request, event *models.Event, fullName, email, phone, regionRaw string) (action.Result, error) {
	ref := h.resolveReferral(ctx, r)

	user, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		if phone == "" {
			return action.Fail("Informe o seu telefone."), nil
		}
		if regionRaw == "" {
			return action.Fail("Selecione a sua região."), nil
		}
		regionID, err := primitive.ObjectIDFromHex(regionRaw)
		if err != nil {
			return action.Fail("Região inválida."), nil
		}
		found, err := h.Regions.Exists(ctx, regionID)
		if err != nil {
			return action.Result{}, err
		}
		if !found {
			return action.Fail("Região inválida."), nil
		}

		created, err := h.Users.Create(ctx, models.User{
			Name:        fullName,
			Email:       email,
			PhoneNumber: phone,
			RegionID:    &regionID,
			Role:        models.RoleSupporter,
			LeaderID:    ref,
		})
		if err != nil {
			return action.Result{}, err
		}
		user = &created
	case err != nil:
		return action.Result{}, err
	}

	// The registration carries the referral for THIS visit, independent of
	// who originally referred the supporter.
	reg := models.EventRegistration{
		EventID:  event.ID,
		UserID:   user.ID,
		LeaderID: ref,
	}

	if _, err := h.Registrations.Create(ctx, reg); err != nil {
		if errors.Is(err, registrationstore.ErrAlreadyRegistered) {
			return action.OK("Você já está inscrito neste evento."), nil
		}
		return action.Result{}, err
	}
	return action.OK("Inscrição confirmada! Nos vemos lá."), nil
}

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

func (h *Handler) pageData(r *http.Request, event *models.Event) eventPageData {
	data := eventPageData{
		EventName:   event.Name,
		Slug:        event.Slug,
		Date:        event.EventDate,
		Location:    event.Location,
		Description: htmlsanitize.PrepareForDisplay(event.Description),
	}
	formutil.SetBase(&data.Base, r, event.Name, "/")
	return data
}
