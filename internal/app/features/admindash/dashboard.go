// internal/app/features/admindash/dashboard.go
package admindash

import (
	"context"
	"net/http"

	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

const topLeaders = 10

type regionRow struct {
	Name  string
	Users int64
}

type leaderRow struct {
	Position int
	Name     string
	Referred int64
}

// dashboardVM is the view model for the admin dashboard.
type dashboardVM struct {
	viewdata.BaseVM
	TotalUsers     int64
	Supporters     int64
	Leaders        int64
	Admins         int64
	Events         int64
	Registrations  int64
	ByRegion       []regionRow
	TopLeaders     []leaderRow
}

// Show renders the admin dashboard aggregates.
// GET /admin/dashboard
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := dashboardVM{
		BaseVM: viewdata.NewBaseVM(r, "Painel administrativo", "/"),
	}

	var err error
	if vm.TotalUsers, err = h.Users.Count(ctx); err != nil {
		h.fail(w, r, "counting users", err)
		return
	}
	if vm.Supporters, err = h.Users.CountByRole(ctx, models.RoleSupporter); err != nil {
		h.fail(w, r, "counting supporters", err)
		return
	}
	if vm.Leaders, err = h.Users.CountByRole(ctx, models.RoleLeader); err != nil {
		h.fail(w, r, "counting leaders", err)
		return
	}
	if vm.Admins, err = h.Users.CountByRole(ctx, models.RoleAdmin); err != nil {
		h.fail(w, r, "counting admins", err)
		return
	}
	if vm.Events, err = h.Events.Count(ctx); err != nil {
		h.fail(w, r, "counting events", err)
		return
	}
	if vm.Registrations, err = h.Registrations.Count(ctx); err != nil {
		h.fail(w, r, "counting registrations", err)
		return
	}

	byRegion, err := h.Users.CountByRegion(ctx)
	if err != nil {
		h.fail(w, r, "aggregating regions", err)
		return
	}
	for _, rc := range byRegion {
		vm.ByRegion = append(vm.ByRegion, regionRow{Name: rc.RegionName, Users: rc.Users})
	}

	board, err := h.Users.Leaderboard(ctx, topLeaders)
	if err != nil {
		h.fail(w, r, "aggregating leaderboard", err)
		return
	}
	for i, entry := range board {
		vm.TopLeaders = append(vm.TopLeaders, leaderRow{
			Position: i + 1,
			Name:     entry.LeaderName,
			Referred: entry.Referred,
		})
	}

	templates.Render(w, r, "admin_dashboard", vm)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	h.ErrLog.LogServerError(w, r, "database error "+what, err, "Não foi possível carregar o painel.", "/")
}
