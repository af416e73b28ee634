// Package gate decides whether a protected destination may be shown for the
// current session.
package gate

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/toast"
)

// Navigation entry points.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
	TicketsPath   = "/tickets"
)

// DeniedMessage is the toast shown when a protected page is requested
// without a session.
const DeniedMessage = "❌ You must log in to access this page"

var protectedPaths = []string{DashboardPath, TicketsPath}

// Outcome is the result of evaluating a guard.
type Outcome int

const (
	Pending Outcome = iota
	Allow
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	}
	return "pending"
}

// Decision tells the caller what to render.
type Decision struct {
	Outcome Outcome
	// To and From are set for Redirect.
	To   string
	From string
	// Session is set for Allow.
	Session *domain.Session
}

// Location is the redirect target with the requested destination attached.
func (d Decision) Location() string {
	if d.Outcome != Redirect {
		return ""
	}
	if d.From == "" {
		return d.To
	}
	return d.To + "?" + url.Values{"from": {d.From}}.Encode()
}

// SessionLoader yields the current session, or nil.
type SessionLoader interface {
	LoadSession(ctx context.Context) (*domain.Session, error)
}

// Gate produces guards for protected destinations.
type Gate struct {
	sessions SessionLoader
	toasts   *toast.Queue
}

// New returns a Gate. toasts may be nil.
func New(sessions SessionLoader, toasts *toast.Queue) *Gate {
	return &Gate{sessions: sessions, toasts: toasts}
}

// Mount starts a guard for one protected mount.
func (g *Gate) Mount() *Guard {
	return &Guard{gate: g}
}

// ReturnPath is where a successful login should land: the originally
// requested destination when it is protected, the dashboard otherwise.
func (g *Gate) ReturnPath(from string) string {
	u, err := url.Parse(from)
	if err != nil || u.IsAbs() || u.Host != "" {
		return DashboardPath
	}
	if IsProtected(u.Path) {
		return u.Path
	}
	return DashboardPath
}

// IsProtected reports whether path requires a session.
func IsProtected(path string) bool {
	for _, p := range protectedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Guard evaluates one mount. It emits the denied toast at most once until a
// session shows up again.
type Guard struct {
	gate *Gate

	mu         sync.Mutex
	resolved   bool
	session    *domain.Session
	toastShown bool
}

// Resolve loads the session. Until it has run, Decide reports Pending.
func (gd *Guard) Resolve(ctx context.Context) error {
	session, err := gd.gate.sessions.LoadSession(ctx)
	if err != nil {
		return err
	}
	gd.mu.Lock()
	gd.resolved = true
	gd.session = session
	gd.mu.Unlock()
	return nil
}

// Decide evaluates the guard against the last resolved session.
func (gd *Guard) Decide(destination string) Decision {
	gd.mu.Lock()
	if !gd.resolved {
		gd.mu.Unlock()
		return Decision{Outcome: Pending}
	}
	if gd.session != nil {
		gd.toastShown = false
		session := *gd.session
		gd.mu.Unlock()
		return Decision{Outcome: Allow, Session: &session}
	}
	notify := !gd.toastShown
	gd.toastShown = true
	gd.mu.Unlock()

	if notify && gd.gate.toasts != nil {
		gd.gate.toasts.Show(DeniedMessage, domain.ToastError)
	}
	return Decision{Outcome: Redirect, To: LoginPath, From: destination}
}

// Check resolves the session on first use and decides.
func (gd *Guard) Check(ctx context.Context, destination string) (Decision, error) {
	gd.mu.Lock()
	resolved := gd.resolved
	gd.mu.Unlock()

	if !resolved {
		if err := gd.Resolve(ctx); err != nil {
			return Decision{}, err
		}
	}
	return gd.Decide(destination), nil
}
