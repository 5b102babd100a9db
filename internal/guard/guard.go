package guard

import (
	"context"
	"log"
	"net/http"

	"github.com/bougzy/cojf/internal/models"
	"github.com/bougzy/cojf/internal/session"
)

// Navigator performs the redirect side effect on denied access. The HTTP
// layer provides one per request; tests provide a recorder.
type Navigator interface {
	Redirect(target string)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(target string)

func (f NavigatorFunc) Redirect(target string) { f(target) }

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  string
}

// Guard makes access decisions from locally cached session claims. Denials
// never raise; they return false and redirect through the Navigator.
type Guard struct {
	sess        *session.Session
	nav         Navigator
	validateURL string
	client      *http.Client
}

// New creates a guard over a session. nav may be nil when no redirect
// behavior is wanted (pure predicate use).
func New(sess *session.Session, nav Navigator, validateURL string) *Guard {
	return &Guard{
		sess:        sess,
		nav:         nav,
		validateURL: validateURL,
		client:      http.DefaultClient,
	}
}

// IsAuthenticated reports whether the session carries both a token and a
// profile id
func (g *Guard) IsAuthenticated() bool {
	return g.sess.Token != "" && g.sess.Profile.ID != ""
}

func (g *Guard) IsBuyer() bool {
	t := g.sess.Profile.UserType
	return t == models.UserTypeBuyer || t == models.UserTypeBoth
}

func (g *Guard) IsSeller() bool {
	t := g.sess.Profile.UserType
	return t == models.UserTypeSeller || t == models.UserTypeBoth
}

func (g *Guard) IsBoth() bool {
	return g.sess.Profile.UserType == models.UserTypeBoth
}

func (g *Guard) IsAdmin() bool {
	for _, role := range models.AdminRoles {
		if g.sess.Profile.Role == role {
			return true
		}
	}
	return false
}

// Decide is the single authorization decision point. Admin bypass lives
// here and nowhere else.
func (g *Guard) Decide(allowed []string) Decision {
	if !g.IsAuthenticated() {
		return Decision{Allowed: false, Reason: "not authenticated"}
	}

	for _, a := range allowed {
		if a == g.sess.Profile.UserType || a == g.sess.Profile.Role {
			return Decision{Allowed: true, Reason: "type or role allowed"}
		}
	}

	if g.IsAdmin() {
		return Decision{Allowed: true, Reason: "admin bypass"}
	}

	return Decision{Allowed: false, Reason: "type and role not in allowed set"}
}

// RequireAuth redirects to target and returns false when unauthenticated
func (g *Guard) RequireAuth(target string) bool {
	if !g.IsAuthenticated() {
		g.redirect(target)
		return false
	}
	return true
}

// RequireUserType requires authentication, then membership of the allowed
// set (admins always pass). Redirects to target on denial.
func (g *Guard) RequireUserType(allowed []string, target string) bool {
	d := g.Decide(allowed)
	if !d.Allowed {
		g.redirect(target)
		return false
	}
	return true
}

// Logout clears the persisted session and redirects. Unconditional.
func (g *Guard) Logout(ctx context.Context, target string) {
	if err := g.sess.Clear(ctx); err != nil {
		log.Printf("Failed to clear session on logout: %v", err)
	}
	g.redirect(target)
}

// AuthHeader builds the bearer header map for API calls. Callable when
// unauthenticated; the token is then empty and the server will reject it.
func (g *Guard) AuthHeader() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + g.sess.Token,
		"Content-Type":  "application/json",
	}
}

// ValidateToken confirms the cached token server-side. Any transport error
// or non-2xx status counts as invalid (fail closed).
func (g *Guard) ValidateToken(ctx context.Context) bool {
	if g.sess.Token == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.validateURL, nil)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+g.sess.Token)

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (g *Guard) redirect(target string) {
	if g.nav != nil {
		g.nav.Redirect(target)
	}
}
