package passwordreset_test

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	"github.com/mobilizabr/mobiliza/internal/app/features/passwordreset"
	resettokenstore "github.com/mobilizabr/mobiliza/internal/app/store/resettokens"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/mailer"
	"github.com/mobilizabr/mobiliza/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*passwordreset.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	// Zero-config mailer is disabled and only logs.
	m := mailer.New(mailer.Config{}, logger)

	h := passwordreset.NewHandler(db, identity.NewMongoProvider(db), m, "http://localhost:3000", uierrors.NewErrorLogger(logger), logger)
	return h, db
}

// confirm posts the new-password form. Every outcome renders a template,
// which panics without a booted template engine, so tests assert on the
// token and password state afterwards.
func confirm(h *passwordreset.Handler, form url.Values) {
	defer func() { _ = recover() }()
	h.Confirm(httptest.NewRecorder(), testutil.NewFormRequest("/password-reset/confirm", form))
}

func TestConfirmRejectsMismatchedPasswords(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	accountID, err := h.Identity.SignUp(ctx, "lider@example.com", "senha-antiga")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	tok, err := h.Tokens.Issue(ctx, accountID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	confirm(h, url.Values{
		"token":            {tok.Token},
		"password":         {"senha-nova-123"},
		"confirm_password": {"senha-diferente"},
	})

	// Nothing was consumed or changed.
	if err := h.Tokens.Peek(ctx, tok.Token); err != nil {
		t.Errorf("token consumed despite mismatch: %v", err)
	}
	if _, err := h.Identity.VerifyPassword(ctx, "lider@example.com", "senha-antiga"); err != nil {
		t.Errorf("old password no longer valid: %v", err)
	}
}

func TestConfirmSetsNewPassword(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	accountID, err := h.Identity.SignUp(ctx, "lider@example.com", "senha-antiga")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	tok, err := h.Tokens.Issue(ctx, accountID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	confirm(h, url.Values{
		"token":            {tok.Token},
		"password":         {"senha-nova-123"},
		"confirm_password": {"senha-nova-123"},
	})

	if err := h.Tokens.Peek(ctx, tok.Token); !errors.Is(err, resettokenstore.ErrInvalidToken) {
		t.Errorf("token still alive after use, err = %v", err)
	}
	if _, err := h.Identity.VerifyPassword(ctx, "lider@example.com", "senha-nova-123"); err != nil {
		t.Errorf("VerifyPassword with new password: %v", err)
	}
	if _, err := h.Identity.VerifyPassword(ctx, "lider@example.com", "senha-antiga"); !errors.Is(err, identity.ErrBadCredentials) {
		t.Errorf("old password still accepted, err = %v", err)
	}
}

func TestConfirmRejectsShortPassword(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	accountID, err := h.Identity.SignUp(ctx, "lider@example.com", "senha-antiga")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	tok, err := h.Tokens.Issue(ctx, accountID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	confirm(h, url.Values{
		"token":            {tok.Token},
		"password":         {"curta"},
		"confirm_password": {"curta"},
	})

	if err := h.Tokens.Peek(ctx, tok.Token); err != nil {
		t.Errorf("token consumed despite short password: %v", err)
	}
	if _, err := h.Identity.VerifyPassword(ctx, "lider@example.com", "senha-antiga"); err != nil {
		t.Errorf("old password no longer valid: %v", err)
	}
}
