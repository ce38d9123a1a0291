// internal/app/features/panel/panel.go
package panel

import (
	"context"
	"html/template"
	"net/http"

	"github.com/mobilizabr/mobiliza/internal/app/system/authz"
	"github.com/mobilizabr/mobiliza/internal/app/system/htmlsanitize"
	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const leaderboardSize = 10

type referredRow struct {
	Name     string
	Email    string
	JoinedAt string
}

type leaderboardRow struct {
	Position int
	Name     string
	Referred int64
	IsMe     bool
}

type announcementRow struct {
	Content   template.HTML
	CreatedAt string
}

// panelVM is the view model for the leader panel.
type panelVM struct {
	viewdata.BaseVM
	ReferralLink  string
	Referred      []referredRow
	ReferredCount int
	Leaderboard   []leaderboardRow
	Announcements []announcementRow
}

// Show renders the leader panel: shareable referral link, the supporters the
// leader brought in, the referral leaderboard, and admin announcements.
// GET /panel
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := panelVM{
		BaseVM:       viewdata.NewBaseVM(r, "Meu painel", "/"),
		ReferralLink: h.BaseURL + "/?ref=" + userID.Hex(),
	}

	referred, err := h.Users.ListByLeader(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing referred supporters", err, "Não foi possível carregar o painel.", "/")
		return
	}
	for _, u := range referred {
		vm.Referred = append(vm.Referred, referredRow{
			Name:     u.Name,
			Email:    u.Email,
			JoinedAt: u.CreatedAt.Format("02/01/2006"),
		})
	}
	vm.ReferredCount = len(vm.Referred)

	board, err := h.Users.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading leaderboard", err, "Não foi possível carregar o painel.", "/")
		return
	}
	for i, entry := range board {
		vm.Leaderboard = append(vm.Leaderboard, leaderboardRow{
			Position: i + 1,
			Name:     entry.LeaderName,
			Referred: entry.Referred,
			IsMe:     entry.LeaderID == userID,
		})
	}

	anns, err := h.Announcements.ListForAudience(ctx, models.AudienceAllLeaders)
	if err != nil {
		// The panel is still useful without announcements.
		h.Log.Warn("failed to load announcements for panel", zap.Error(err))
	}
	for _, a := range anns {
		vm.Announcements = append(vm.Announcements, announcementRow{
			Content:   htmlsanitize.PrepareForDisplay(a.Content),
			CreatedAt: a.CreatedAt.Format("02/01/2006"),
		})
	}

	templates.Render(w, r, "panel", vm)
}
