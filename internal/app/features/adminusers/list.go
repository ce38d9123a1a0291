// internal/app/features/adminusers/list.go
package adminusers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mobilizabr/mobiliza/internal/app/system/timeouts"
	"github.com/mobilizabr/mobiliza/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

const perPage = 25

type userRow struct {
	ID          string
	Name        string
	Email       string
	Role        string
	PhoneNumber string
	CreatedAt   string
}

// ListVM is the view model for the admin users list.
type ListVM struct {
	viewdata.BaseVM
	Items      []userRow
	Query      string
	RoleFilter string
	Page       int64
	PrevPage   int64
	NextPage   int64
	HasPrev    bool
	HasNext    bool
	Total      int64
	Success    string
}

// List displays users with search by name and role filter.
// GET /admin/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	role := query.Get(r, "role")
	page, _ := strconv.ParseInt(query.Get(r, "page"), 10, 64)
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, total, err := h.Users.Search(ctx, q, role, page, perPage)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error searching users", err, "Não foi possível carregar os usuários.", "/admin/dashboard")
		return
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{
			ID:          u.ID.Hex(),
			Name:        u.Name,
			Email:       u.Email,
			Role:        u.Role,
			PhoneNumber: u.PhoneNumber,
			CreatedAt:   u.CreatedAt.Format("02/01/2006"),
		})
	}

	vm := ListVM{
		BaseVM:     viewdata.NewBaseVM(r, "Usuários", "/admin/dashboard"),
		Items:      rows,
		Query:      q,
		RoleFilter: role,
		Page:       page,
		PrevPage:   page - 1,
		NextPage:   page + 1,
		HasPrev:    page > 1,
		HasNext:    page*perPage < total,
		Total:      total,
	}

	switch r.URL.Query().Get("success") {
	case "updated":
		vm.Success = "Usuário atualizado."
	case "role":
		vm.Success = "Papel atualizado."
	case "deleted":
		vm.Success = "Usuário removido."
	}

	templates.Render(w, r, "admin_users_list", vm)
}
