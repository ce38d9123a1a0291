package referral_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mobilizabr/mobiliza/internal/app/system/referral"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func capture(t *testing.T, codec *referral.Codec, target string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	codec.Capture(noop).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec.Result().Cookies()
}

func TestCaptureRoundTrip(t *testing.T) {
	codec := referral.NewCodec([]byte("test-referral-key"), false)
	leaderID := primitive.NewObjectID()

	cookies := capture(t, codec, "/?ref="+leaderID.Hex())
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/join", nil)
	req.AddCookie(cookies[0])

	got := codec.LeaderID(req)
	if got == nil {
		t.Fatal("LeaderID returned nil for a valid cookie")
	}
	if *got != leaderID {
		t.Errorf("LeaderID = %s, want %s", got.Hex(), leaderID.Hex())
	}
}

func TestCaptureIgnoresMalformedRef(t *testing.T) {
	codec := referral.NewCodec([]byte("test-referral-key"), false)

	if cookies := capture(t, codec, "/?ref=nao-e-um-id"); len(cookies) != 0 {
		t.Errorf("malformed ref set %d cookies, want 0", len(cookies))
	}
	if cookies := capture(t, codec, "/"); len(cookies) != 0 {
		t.Errorf("missing ref set %d cookies, want 0", len(cookies))
	}
}

func TestTamperedCookieDecodesToNothing(t *testing.T) {
	codec := referral.NewCodec([]byte("test-referral-key"), false)
	leaderID := primitive.NewObjectID()

	cookies := capture(t, codec, "/?ref="+leaderID.Hex())
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	tampered := *cookies[0]
	tampered.Value = "x" + tampered.Value

	req := httptest.NewRequest(http.MethodGet, "/join", nil)
	req.AddCookie(&tampered)
	if got := codec.LeaderID(req); got != nil {
		t.Errorf("tampered cookie decoded to %s", got.Hex())
	}
}

func TestCookieSignedWithDifferentKeyRejected(t *testing.T) {
	signer := referral.NewCodec([]byte("one-key"), false)
	verifier := referral.NewCodec([]byte("another-key"), false)
	leaderID := primitive.NewObjectID()

	cookies := capture(t, signer, "/?ref="+leaderID.Hex())
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/join", nil)
	req.AddCookie(cookies[0])
	if got := verifier.LeaderID(req); got != nil {
		t.Errorf("foreign-signed cookie decoded to %s", got.Hex())
	}
}

func TestClearExpiresCookie(t *testing.T) {
	codec := referral.NewCodec([]byte("test-referral-key"), false)

	rec := httptest.NewRecorder()
	codec.Clear(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want negative", cookies[0].MaxAge)
	}
}
