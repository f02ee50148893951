// Package session gates the API behind the admin PIN cookie.
package session

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"obra/internal/log"
)

const (
	CookieName = "admin_pin"
	CookieAge  = 30 * 24 * time.Hour
)

// Gate rejects API requests whose cookie does not carry the PIN. An empty
// PIN disables the gate.
type Gate struct {
	pin    string
	open   map[string]bool
	prefix string
	logger *log.Logger
}

// NewGate protects every path under prefix except the open ones.
func NewGate(pin, prefix string, open ...string) *Gate {
	g := &Gate{
		pin:    pin,
		open:   make(map[string]bool, len(open)),
		prefix: prefix,
		logger: log.WithComponent(log.ComponentSecurity),
	}
	for _, p := range open {
		g.open[p] = true
	}
	return g
}

// Enabled reports whether a PIN is configured.
func (g *Gate) Enabled() bool { return g.pin != "" }

// Check compares a candidate PIN in constant time.
func (g *Gate) Check(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.pin)) == 1
}

// Authorized reports whether r may reach a protected route.
func (g *Gate) Authorized(r *http.Request) bool {
	if !g.Enabled() {
		return true
	}
	c, err := r.Cookie(CookieName)
	return err == nil && g.Check(c.Value)
}

// Cookie is the session cookie set after a successful login.
func (g *Gate) Cookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    g.pin,
		Path:     "/",
		MaxAge:   int(CookieAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware calls onDenied for protected requests without a valid cookie.
func (g *Gate) Middleware(onDenied func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, g.prefix) || g.open[r.URL.Path] || g.Authorized(r) {
				next.ServeHTTP(w, r)
				return
			}
			g.logger.WarnContext(r.Context(), "Unauthorized request",
				log.FieldPath, r.URL.Path,
				log.FieldErrorType, log.ErrorTypeAuth)
			onDenied(w, r)
		})
	}
}
