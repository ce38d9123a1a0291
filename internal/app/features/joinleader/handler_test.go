package joinleader_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	"github.com/mobilizabr/mobiliza/internal/app/features/joinleader"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/auth"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/referral"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/mobilizabr/mobiliza/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const validCPF = "52998224725"

func newTestHandler(t *testing.T) (*joinleader.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-0123456789abcdef", "mobiliza_test_session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	h := joinleader.NewHandler(
		db,
		identity.NewMongoProvider(db),
		sessionMgr,
		referral.NewCodec([]byte("test-referral-key"), false),
		uierrors.NewErrorLogger(logger),
		logger,
	)
	return h, db
}

// signUp posts the sign-up form. Error paths re-render the form, which
// panics without a booted template engine, so the panic is swallowed;
// successful sign-ups redirect and return normally.
func signUp(h *joinleader.Handler, rec *httptest.ResponseRecorder, form url.Values, cookies []*http.Cookie) {
	defer func() { _ = recover() }()
	req := testutil.NewFormRequest("/join", form)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.SignUp(rec, req)
}

func validForm(email string) url.Values {
	return url.Values{
		"full_name": {"Joana Lima"},
		"email":     {email},
		"password":  {"senha-forte-123"},
		"cpf":       {validCPF},
	}
}

func TestSignUpCreatesLeader(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := httptest.NewRecorder()
	signUp(h, rec, validForm("joana@example.com"), nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Result().Header.Get("Location"); loc != "/panel" {
		t.Errorf("Location = %q, want /panel", loc)
	}

	user, err := userstore.New(db).GetByEmail(ctx, "joana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Role != models.RoleLeader {
		t.Errorf("role = %q, want %q", user.Role, models.RoleLeader)
	}
	if !user.HasLogin() {
		t.Error("created leader has no login")
	}
	if user.CPF != validCPF {
		t.Errorf("cpf = %q", user.CPF)
	}

	if _, err := h.Identity.VerifyPassword(ctx, "joana@example.com", "senha-forte-123"); err != nil {
		t.Errorf("VerifyPassword after sign-up: %v", err)
	}
}

func TestSignUpUpgradesSupporterInPlace(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	referrer := fx.CreateLeader(ctx, "Líder Indicante", "indicante@example.com")
	supporter := fx.CreateSupporter(ctx, "Joana", "joana@example.com", &referrer.ID)

	rec := httptest.NewRecorder()
	signUp(h, rec, validForm("joana@example.com"), nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	user, err := userstore.New(db).GetByEmail(ctx, "joana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.ID != supporter.ID {
		t.Error("upgrade created a new row instead of promoting the supporter")
	}
	if user.Role != models.RoleLeader {
		t.Errorf("role = %q, want %q", user.Role, models.RoleLeader)
	}
	if user.LeaderID == nil || *user.LeaderID != referrer.ID {
		t.Error("upgrade lost the referral attribution")
	}
}

func TestSignUpCarriesReferralCookie(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	referrer := fx.CreateLeader(ctx, "Líder Indicante", "indicante@example.com")

	// Visit a referral link first so the signed cookie is set.
	capRec := httptest.NewRecorder()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	h.Referral.Capture(noop).ServeHTTP(capRec, httptest.NewRequest(http.MethodGet, "/?ref="+referrer.ID.Hex(), nil))

	rec := httptest.NewRecorder()
	signUp(h, rec, validForm("nova@example.com"), capRec.Result().Cookies())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	user, err := userstore.New(db).GetByEmail(ctx, "nova@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.LeaderID == nil || *user.LeaderID != referrer.ID {
		t.Error("new leader row does not carry the referral")
	}
}

func TestSignUpDropsStaleReferral(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	ghost := fx.CreateSupporter(ctx, "Não Líder", "naolider@example.com", nil)

	// Referral cookie pointing at someone who is not a leader.
	capRec := httptest.NewRecorder()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	h.Referral.Capture(noop).ServeHTTP(capRec, httptest.NewRequest(http.MethodGet, "/?ref="+ghost.ID.Hex(), nil))

	rec := httptest.NewRecorder()
	signUp(h, rec, validForm("nova@example.com"), capRec.Result().Cookies())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	user, err := userstore.New(db).GetByEmail(ctx, "nova@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.LeaderID != nil {
		t.Error("sign-up credited a non-leader referrer")
	}
}

func TestSignUpRejectsExistingAccount(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateLeader(ctx, "Líder Existente", "lider@example.com")

	rec := httptest.NewRecorder()
	signUp(h, rec, validForm("lider@example.com"), nil)

	if loc := rec.Result().Header.Get("Location"); loc == "/panel" {
		t.Fatal("existing account was signed up again")
	}
	// No identity account may have been created for the email.
	if _, err := h.Identity.VerifyPassword(ctx, "lider@example.com", "senha-forte-123"); !errors.Is(err, identity.ErrBadCredentials) {
		t.Errorf("VerifyPassword err = %v, want ErrBadCredentials", err)
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := validForm("curta@example.com")
	form.Set("password", "curta")

	rec := httptest.NewRecorder()
	signUp(h, rec, form, nil)

	if _, err := userstore.New(db).GetByEmail(ctx, "curta@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("err = %v, want ErrNoDocuments", err)
	}
}

func TestSignUpRejectsInvalidCPF(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := validForm("cpf@example.com")
	form.Set("cpf", "12345678900")

	rec := httptest.NewRecorder()
	signUp(h, rec, form, nil)

	if _, err := userstore.New(db).GetByEmail(ctx, "cpf@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("err = %v, want ErrNoDocuments", err)
	}
}
