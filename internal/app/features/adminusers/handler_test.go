package adminusers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mobilizabr/mobiliza/internal/app/features/adminusers"
	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	registrationstore "github.com/mobilizabr/mobiliza/internal/app/store/registrations"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/mobilizabr/mobiliza/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*adminusers.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return adminusers.NewHandler(db, identity.NewMongoProvider(db), uierrors.NewErrorLogger(logger), logger), db
}

// adminRequest builds a POST on a user management route acting as the given
// admin, with the target user id as the chi URL parameter.
func adminRequest(target, id string, form url.Values, admin testutil.TestUser) *http.Request {
	req := testutil.NewFormRequest(target, form)
	req = testutil.WithChiURLParam(req, "id", id)
	return testutil.WithUser(req, admin)
}

func TestChangeRolePromotesSupporter(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	supporter := fx.CreateSupporter(ctx, "Apoiador", "apoiador@example.com", nil)

	rec := httptest.NewRecorder()
	req := adminRequest("/admin/users/"+supporter.ID.Hex()+"/role",
		supporter.ID.Hex(),
		url.Values{"role": {models.RoleLeader}},
		testutil.AdminUser())
	h.ChangeRole(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Result().Header.Get("Location"); !strings.Contains(loc, "success=role") {
		t.Errorf("Location = %q, want success=role", loc)
	}

	got, err := userstore.New(db).GetByID(ctx, supporter.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != models.RoleLeader {
		t.Errorf("role = %q, want %q", got.Role, models.RoleLeader)
	}
}

func TestChangeRoleRefusesLastAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Única Admin", "admin@example.com")

	rec := httptest.NewRecorder()
	req := adminRequest("/admin/users/"+admin.ID.Hex()+"/role",
		admin.ID.Hex(),
		url.Values{"role": {models.RoleLeader}},
		testutil.AdminUser())

	// The rejection renders an error page, which panics without a booted
	// template engine.
	func() {
		defer func() { _ = recover() }()
		h.ChangeRole(rec, req)
	}()

	got, err := userstore.New(db).GetByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("last admin was demoted to %q", got.Role)
	}
}

func TestDeleteLeaderCleansUpReferralsAndRegistrations(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	leader := fx.CreateLeader(ctx, "Líder", "lider@example.com")
	referred := fx.CreateSupporter(ctx, "Indicada", "indicada@example.com", &leader.ID)
	ev := fx.CreateEvent(ctx, "Evento", "evento", "2026-10-01T19:00:00-03:00")
	fx.CreateRegistration(ctx, ev.ID, leader.ID, nil)
	fx.CreateRegistration(ctx, ev.ID, referred.ID, &leader.ID)

	rec := httptest.NewRecorder()
	req := adminRequest("/admin/users/"+leader.ID.Hex()+"/delete",
		leader.ID.Hex(), url.Values{}, testutil.AdminUser())
	h.Delete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Result().Header.Get("Location"); !strings.Contains(loc, "success=deleted") {
		t.Errorf("Location = %q, want success=deleted", loc)
	}

	users := userstore.New(db)
	if _, err := users.GetByID(ctx, leader.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("deleted leader still present, err = %v", err)
	}

	// Referred supporters stay, but lose the attribution.
	gotReferred, err := users.GetByID(ctx, referred.ID)
	if err != nil {
		t.Fatalf("GetByID referred: %v", err)
	}
	if gotReferred.LeaderID != nil {
		t.Error("referred supporter still points at the deleted leader")
	}

	// The leader's own registration is gone; the supporter's survives
	// without leader attribution.
	regs := registrationstore.New(db)
	n, err := regs.CountByEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("CountByEvent: %v", err)
	}
	if n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}

func TestDeleteRefusesOwnAccount(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")

	self := testutil.AdminUser()
	self.ID = admin.ID.Hex()

	rec := httptest.NewRecorder()
	req := adminRequest("/admin/users/"+admin.ID.Hex()+"/delete",
		admin.ID.Hex(), url.Values{}, self)

	func() {
		defer func() { _ = recover() }()
		h.Delete(rec, req)
	}()

	if _, err := userstore.New(db).GetByID(ctx, admin.ID); err != nil {
		t.Fatalf("admin deleted own account, err = %v", err)
	}
}

func TestUpdateEditsCoreInfo(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	supporter := fx.CreateSupporter(ctx, "Nome Antigo", "antigo@example.com", nil)

	rec := httptest.NewRecorder()
	req := adminRequest("/admin/users/"+supporter.ID.Hex(),
		supporter.ID.Hex(),
		url.Values{
			"full_name":    {"Nome Novo"},
			"email":        {"novo@example.com"},
			"phone_number": {"(61) 98888-7777"},
		},
		testutil.AdminUser())
	h.Update(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	got, err := userstore.New(db).GetByID(ctx, supporter.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Nome Novo" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Email != "novo@example.com" {
		t.Errorf("email = %q", got.Email)
	}
}
