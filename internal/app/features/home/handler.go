package home

import (
	"context"
	"net/http"

	eventstore "github.com/mobilizabr/mobiliza/internal/app/store/events"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	DB     *mongo.Database
	Events *eventstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Events: eventstore.New(db),
		Log:    logger,
	}
}

type eventCard struct {
	Name     string
	Slug     string
	Date     string
	Location string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var cards []eventCard
	if events, err := h.Events.List(ctx); err != nil {
		// The landing page still works without the event strip.
		h.Log.Warn("failed to load events for landing page", zap.Error(err))
	} else {
		for _, e := range events {
			cards = append(cards, eventCard{
				Name:     e.Name,
				Slug:     e.Slug,
				Date:     e.EventDate,
				Location: e.Location,
			})
		}
	}

	data := struct {
		viewdata.BaseVM
		Events []eventCard
	}{
		BaseVM: viewdata.NewBaseVM(r, "Bem-vindo", "/"),
		Events: cards,
	}

	templates.Render(w, r, "home", data)
}
