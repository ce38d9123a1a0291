// Package referral tracks which leader gets credit for a visitor. A leader
// shares links carrying ?ref=<their id>; the middleware stores the id in a
// signed cookie so the attribution survives navigation and is applied when
// the visitor finally registers.
package referral

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	cookieName = "mobiliza_ref"
	queryParam = "ref"
	maxAge     = 30 * 24 * time.Hour
)

// Codec signs and verifies the referral cookie. A forged or tampered cookie
// decodes to nothing and the registration simply carries no attribution.
type Codec struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewCodec builds a Codec from the session key. Signing only; the leader id
// is not a secret, it just must not be forgeable.
func NewCodec(hashKey []byte, secure bool) *Codec {
	return &Codec{
		sc:     securecookie.New(hashKey, nil),
		secure: secure,
	}
}

// Capture is middleware that copies a valid ?ref= query parameter into the
// signed referral cookie. Invalid ids are ignored.
func (c *Codec) Capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ref := r.URL.Query().Get(queryParam); ref != "" {
			if _, err := primitive.ObjectIDFromHex(ref); err == nil {
				c.set(w, ref)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (c *Codec) set(w http.ResponseWriter, leaderID string) {
	encoded, err := c.sc.Encode(cookieName, leaderID)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LeaderID returns the referring leader's ObjectID from the cookie, or nil
// when there is no valid referral.
func (c *Codec) LeaderID(r *http.Request) *primitive.ObjectID {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}
	var raw string
	if err := c.sc.Decode(cookieName, cookie.Value, &raw); err != nil {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil
	}
	return &oid
}

// Clear drops the referral cookie, typically after it has been applied to a
// registration.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
