package profile_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	uierrors "github.com/mobilizabr/mobiliza/internal/app/features/errors"
	"github.com/mobilizabr/mobiliza/internal/app/features/profile"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/app/system/uploads"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/mobilizabr/mobiliza/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *mongo.Database, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	dir := t.TempDir()
	avatars, err := uploads.New(dir, "/uploads/avatars")
	if err != nil {
		t.Fatalf("uploads.New: %v", err)
	}

	h := profile.NewHandler(db, identity.NewMongoProvider(db), avatars, uierrors.NewErrorLogger(logger), logger)
	return h, db, dir
}

// asUser builds a session user matching an existing user row.
func asUser(u models.User) testutil.TestUser {
	tu := testutil.TestUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.AuthID != nil {
		tu.AuthID = *u.AuthID
	}
	return tu
}

func TestUpdateSavesProfile(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	leader := fx.CreateLeader(ctx, "Nome Antigo", "lider@example.com")
	region := fx.CreateRegion(ctx, "Taguatinga")

	rec := httptest.NewRecorder()
	req := testutil.WithUser(testutil.NewFormRequest("/profile", url.Values{
		"full_name":    {"Nome Novo"},
		"phone_number": {"(61) 98888-7777"},
		"region_id":    {region.ID.Hex()},
		"occupation":   {"Professora"},
	}), asUser(leader))
	h.Update(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Result().Header.Get("Location"); !strings.Contains(loc, "success=updated") {
		t.Errorf("Location = %q, want success=updated", loc)
	}

	got, err := userstore.New(db).GetByID(ctx, leader.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Nome Novo" {
		t.Errorf("name = %q", got.Name)
	}
	if got.RegionID == nil || *got.RegionID != region.ID {
		t.Error("region not saved")
	}
	if got.Occupation != "Professora" {
		t.Errorf("occupation = %q", got.Occupation)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	leader := fx.CreateLeader(ctx, "Líder", "lider@example.com")

	// Give the fixture row a real identity account.
	accountID, err := h.Identity.SignUp(ctx, "lider@example.com", "senha-antiga-123")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	_, err = db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": leader.ID},
		bson.M{"$set": bson.M{"auth_id": accountID}},
	)
	if err != nil {
		t.Fatalf("set auth_id: %v", err)
	}
	leader.AuthID = &accountID

	// Wrong current password is rejected; the error page render panics
	// without a booted template engine.
	func() {
		defer func() { _ = recover() }()
		req := testutil.WithUser(testutil.NewFormRequest("/profile/password", url.Values{
			"current_password": {"senha-errada"},
			"new_password":     {"senha-nova-123"},
			"confirm_password": {"senha-nova-123"},
		}), asUser(leader))
		h.ChangePassword(httptest.NewRecorder(), req)
	}()
	if _, err := h.Identity.VerifyPassword(ctx, "lider@example.com", "senha-antiga-123"); err != nil {
		t.Fatalf("password changed despite wrong current password: %v", err)
	}

	rec := httptest.NewRecorder()
	req := testutil.WithUser(testutil.NewFormRequest("/profile/password", url.Values{
		"current_password": {"senha-antiga-123"},
		"new_password":     {"senha-nova-123"},
		"confirm_password": {"senha-nova-123"},
	}), asUser(leader))
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Result().Header.Get("Location"); !strings.Contains(loc, "success=password") {
		t.Errorf("Location = %q, want success=password", loc)
	}
	if _, err := h.Identity.VerifyPassword(ctx, "lider@example.com", "senha-nova-123"); err != nil {
		t.Errorf("VerifyPassword with new password: %v", err)
	}
}

func avatarRequest(t *testing.T, filename, contentType string, payload []byte, user testutil.TestUser) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return testutil.WithUser(req, user)
}

func TestUploadAvatarStoresFile(t *testing.T) {
	h, db, dir := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	leader := fx.CreateLeader(ctx, "Líder", "lider@example.com")

	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, avatarRequest(t, "foto.png", "image/png", []byte("png-bytes"), asUser(leader)))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Result().Header.Get("Location"); !strings.Contains(loc, "success=avatar") {
		t.Errorf("Location = %q, want success=avatar", loc)
	}

	got, err := userstore.New(db).GetByID(ctx, leader.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProfilePictureURL == "" {
		t.Fatal("profile picture url not set")
	}

	name := filepath.Base(got.ProfilePictureURL)
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("stored avatar missing on disk: %v", err)
	}
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	h, db, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	leader := fx.CreateLeader(ctx, "Líder", "lider@example.com")

	func() {
		defer func() { _ = recover() }()
		h.UploadAvatar(httptest.NewRecorder(), avatarRequest(t, "nota.txt", "text/plain", []byte("texto"), asUser(leader)))
	}()

	got, err := userstore.New(db).GetByID(ctx, leader.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProfilePictureURL != "" {
		t.Errorf("non-image stored as avatar: %q", got.ProfilePictureURL)
	}
}
