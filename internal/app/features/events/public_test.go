package events_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	"github.com/mobilizabr/mobiliza/internal/app/features/events"
	registrationstore "github.com/mobilizabr/mobiliza/internal/app/store/registrations"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/referral"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/mobilizabr/mobiliza/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*events.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	// Duplicate detection relies on the unique registration index.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := db.Collection("event_registrations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("failed to create registration index: %v", err)
	}

	logger := zap.NewNop()
	return events.NewHandler(
		db,
		referral.NewCodec([]byte("test-referral-key"), false),
		uierrors.NewErrorLogger(logger),
		logger,
	), db
}

// register posts the event registration form. The handler always renders
// the event page afterwards, which panics without a booted template engine,
// so the panic is swallowed and tests assert on database state.
func register(h *events.Handler, slug string, form url.Values, cookies []*http.Cookie) {
	defer func() { _ = recover() }()
	req := testutil.NewFormRequest("/events/"+slug+"/register", form)
	req = testutil.WithChiURLParam(req, "slug", slug)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.Register(httptest.NewRecorder(), req)
}

func TestRegisterCreatesSupporterRow(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ev := fx.CreateEvent(ctx, "Caminhada no Gama", "caminhada-no-gama", "2026-10-01T09:00:00-03:00")
	region := fx.CreateRegion(ctx, "Gama")

	register(h, ev.Slug, url.Values{
		"full_name":    {"Pedro Alves"},
		"email":        {"pedro@example.com"},
		"phone_number": {"(61) 99999-0000"},
		"region_id":    {region.ID.Hex()},
	}, nil)

	user, err := userstore.New(db).GetByEmail(ctx, "pedro@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Role != models.RoleSupporter {
		t.Errorf("role = %q, want %q", user.Role, models.RoleSupporter)
	}
	if user.RegionID == nil || *user.RegionID != region.ID {
		t.Error("region not saved on first-time registrant")
	}

	n, err := registrationstore.New(db).CountByEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("CountByEvent: %v", err)
	}
	if n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}

func TestRegisterTwiceKeepsOneRegistration(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ev := fx.CreateEvent(ctx, "Caminhada", "caminhada", "2026-10-01T09:00:00-03:00")
	region := fx.CreateRegion(ctx, "Gama")

	form := url.Values{
		"full_name":    {"Pedro Alves"},
		"email":        {"pedro@example.com"},
		"phone_number": {"(61) 99999-0000"},
		"region_id":    {region.ID.Hex()},
	}
	register(h, ev.Slug, form, nil)
	register(h, ev.Slug, form, nil)

	n, err := registrationstore.New(db).CountByEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("CountByEvent: %v", err)
	}
	if n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}

	// The repeat did not duplicate the supporter row either.
	_, total, err := userstore.New(db).Search(ctx, "pedro", "", 1, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 {
		t.Errorf("supporter rows = %d, want 1", total)
	}
}

func TestRegisterAttributesReferral(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ev := fx.CreateEvent(ctx, "Caminhada", "caminhada", "2026-10-01T09:00:00-03:00")
	region := fx.CreateRegion(ctx, "Gama")
	leader := fx.CreateLeader(ctx, "Líder", "lider@example.com")

	capRec := httptest.NewRecorder()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	h.Referral.Capture(noop).ServeHTTP(capRec, httptest.NewRequest(http.MethodGet, "/?ref="+leader.ID.Hex(), nil))

	register(h, ev.Slug, url.Values{
		"full_name":    {"Nova Apoiadora"},
		"email":        {"nova@example.com"},
		"phone_number": {"(61) 99999-0000"},
		"region_id":    {region.ID.Hex()},
	}, capRec.Result().Cookies())

	user, err := userstore.New(db).GetByEmail(ctx, "nova@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.LeaderID == nil || *user.LeaderID != leader.ID {
		t.Error("supporter row does not carry the referral")
	}
}

func TestRegisterIgnoresUnknownReferrer(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ev := fx.CreateEvent(ctx, "Caminhada", "caminhada", "2026-10-01T09:00:00-03:00")
	region := fx.CreateRegion(ctx, "Gama")

	// Referral cookie pointing at an id that is not a leader.
	ghost := fx.CreateSupporter(ctx, "Fantasma", "fantasma@example.com", nil)
	capRec := httptest.NewRecorder()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	h.Referral.Capture(noop).ServeHTTP(capRec, httptest.NewRequest(http.MethodGet, "/?ref="+ghost.ID.Hex(), nil))

	register(h, ev.Slug, url.Values{
		"full_name":    {"Sem Indicação"},
		"email":        {"sem@example.com"},
		"phone_number": {"(61) 99999-0000"},
		"region_id":    {region.ID.Hex()},
	}, capRec.Result().Cookies())

	user, err := userstore.New(db).GetByEmail(ctx, "sem@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.LeaderID != nil {
		t.Error("registration credited a non-leader referrer")
	}
}

func TestRegisterFirstTimeRequiresPhoneAndRegion(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ev := fx.CreateEvent(ctx, "Caminhada", "caminhada", "2026-10-01T09:00:00-03:00")

	register(h, ev.Slug, url.Values{
		"full_name": {"Sem Telefone"},
		"email":     {"semtelefone@example.com"},
	}, nil)

	if _, err := userstore.New(db).GetByEmail(ctx, "semtelefone@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("supporter created without required fields, err = %v", err)
	}
	n, err := registrationstore.New(db).CountByEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("CountByEvent: %v", err)
	}
	if n != 0 {
		t.Errorf("registrations = %d, want 0", n)
	}
}

func TestRegisterKnownEmailNeedsNoExtras(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ev := fx.CreateEvent(ctx, "Caminhada", "caminhada", "2026-10-01T09:00:00-03:00")
	supporter := fx.CreateSupporter(ctx, "Conhecida", "conhecida@example.com", nil)

	register(h, ev.Slug, url.Values{
		"full_name": {"Conhecida"},
		"email":     {"conhecida@example.com"},
	}, nil)

	rows, err := registrationstore.New(db).Attendees(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Attendees: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].UserID != supporter.ID {
		t.Error("registration attached to the wrong user")
	}
}

func TestRegisterRequiresValidEmail(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ev := fx.CreateEvent(ctx, "Caminhada", "caminhada", "2026-10-01T09:00:00-03:00")

	register(h, ev.Slug, url.Values{
		"full_name": {"Sem Email"},
		"email":     {"nao-e-email"},
	}, nil)

	n, err := registrationstore.New(db).CountByEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("CountByEvent: %v", err)
	}
	if n != 0 {
		t.Errorf("registrations = %d, want 0", n)
	}
}
