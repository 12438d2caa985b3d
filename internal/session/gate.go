package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/auth"
)

const (
	// CookieName is the single piece of client state the gate owns.
	CookieName = "token"
	// Lifetime is the fixed expiry applied to every persisted token.
	Lifetime = 7 * 24 * time.Hour
)

// Decoder turns a raw token into claims.
type Decoder interface {
	Decode(raw string) (auth.Claims, error)
}

type claimsKey struct{}

// Gate guards protected views behind the token cookie. Claims are decoded
// from the cookie on every call and never cached.
type Gate struct {
	decoder Decoder
	log     *zap.Logger
	secure  bool
	now     func() time.Time
}

// NewGate builds a gate. secure controls the cookie Secure flag and should
// only be false for plain-HTTP local development.
func NewGate(decoder Decoder, log *zap.Logger, secure bool) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{decoder: decoder, log: log, secure: secure, now: time.Now}
}

// Current returns the claims of the visitor's session, or false when there is
// no usable token. Decode failures are logged, never returned.
func (g *Gate) Current(r *http.Request) (auth.Claims, bool) {
	raw, ok := BearerToken(r)
	if !ok {
		return auth.Claims{}, false
	}
	return g.inspect(raw, r.URL.Path)
}

// Inspect decodes a token that has not been stored yet, with the same
// all-or-nothing result as Current.
func (g *Gate) Inspect(raw string) (auth.Claims, bool) {
	return g.inspect(raw, "")
}

func (g *Gate) inspect(raw, path string) (auth.Claims, bool) {
	claims, err := g.decoder.Decode(raw)
	if err != nil {
		g.log.Warn("discarding undecodable session token",
			zap.String("path", path),
			zap.Error(err),
		)
		return auth.Claims{}, false
	}
	return claims, true
}

// Require serves onMissing when the visitor has no session. Otherwise the
// claims are attached to the request context and next runs.
func (g *Gate) Require(onMissing, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := g.Current(r)
		if !ok {
			onMissing.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Persist stores a freshly issued token for the whole site.
func (g *Gate) Persist(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  g.now().Add(Lifetime),
		MaxAge:   int(Lifetime / time.Second),
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear deletes the stored token.
func (g *Gate) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// RedirectTo returns an onMissing handler that sends the visitor to target.
func RedirectTo(target string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})
}

// BearerToken reads the raw token from the session cookie.
func BearerToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// WithClaims attaches claims to ctx.
func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims attached by Require.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}
