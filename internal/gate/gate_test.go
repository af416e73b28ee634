package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketapp/internal/clock"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/toast"
)

type fakeSessions struct {
	session *domain.Session
	err     error
	loads   int
}

func (f *fakeSessions) LoadSession(context.Context) (*domain.Session, error) {
	f.loads++
	return f.session, f.err
}

func newGate(sessions SessionLoader) (*Gate, *toast.Queue, *int) {
	shown := 0
	queue := toast.NewQueue(clock.Fake(time.Unix(0, 0)), time.Second, toast.WithSink(func(_ domain.Toast, visible bool) {
		if visible {
			shown++
		}
	}))
	return New(sessions, queue), queue, &shown
}

func TestGuard_PendingUntilResolved(t *testing.T) {
	g, _, shown := newGate(&fakeSessions{})
	guard := g.Mount()

	assert.Equal(t, Pending, guard.Decide("/tickets").Outcome)
	assert.Zero(t, *shown)
}

func TestGuard_RedirectsWithOneToastPerMount(t *testing.T) {
	sessions := &fakeSessions{}
	g, queue, shown := newGate(sessions)
	guard := g.Mount()

	d, err := guard.Check(context.Background(), "/tickets")
	require.NoError(t, err)
	assert.Equal(t, Redirect, d.Outcome)
	assert.Equal(t, LoginPath, d.To)
	assert.Equal(t, "/tickets", d.From)
	assert.Equal(t, "/login?from=%2Ftickets", d.Location())

	current, ok := queue.Current()
	require.True(t, ok)
	assert.Equal(t, DeniedMessage, current.Message)
	assert.Equal(t, domain.ToastError, current.Kind)

	_, err = guard.Check(context.Background(), "/tickets")
	require.NoError(t, err)
	assert.Equal(t, 1, *shown)
	assert.Equal(t, 1, sessions.loads)

	_, err = g.Mount().Check(context.Background(), "/dashboard")
	require.NoError(t, err)
	assert.Equal(t, 2, *shown, "a new mount may notify again")
}

func TestGuard_AllowResetsNotification(t *testing.T) {
	sessions := &fakeSessions{}
	g, _, shown := newGate(sessions)
	guard := g.Mount()
	ctx := context.Background()

	_, err := guard.Check(ctx, "/dashboard")
	require.NoError(t, err)

	sessions.session = &domain.Session{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, guard.Resolve(ctx))
	d := guard.Decide("/dashboard")
	assert.Equal(t, Allow, d.Outcome)
	require.NotNil(t, d.Session)
	assert.Equal(t, "ada@example.com", d.Session.Email)
	assert.Empty(t, d.Location())

	sessions.session = nil
	require.NoError(t, guard.Resolve(ctx))
	assert.Equal(t, Redirect, guard.Decide("/dashboard").Outcome)
	assert.Equal(t, 2, *shown)
}

func TestGuard_LoadError(t *testing.T) {
	g, _, shown := newGate(&fakeSessions{err: errors.New("store down")})
	_, err := g.Mount().Check(context.Background(), "/tickets")
	require.Error(t, err)
	assert.Zero(t, *shown)
}

func TestReturnPath(t *testing.T) {
	g := New(&fakeSessions{}, nil)

	assert.Equal(t, "/tickets", g.ReturnPath("/tickets"))
	assert.Equal(t, "/tickets/42", g.ReturnPath("/tickets/42"))
	assert.Equal(t, "/dashboard", g.ReturnPath("/dashboard?tab=open"))
	assert.Equal(t, DashboardPath, g.ReturnPath(""))
	assert.Equal(t, DashboardPath, g.ReturnPath("/signup"))
	assert.Equal(t, DashboardPath, g.ReturnPath("https://evil.example/tickets"))
	assert.Equal(t, DashboardPath, g.ReturnPath("//evil.example/tickets"))
}

func TestIsProtected(t *testing.T) {
	assert.True(t, IsProtected("/dashboard"))
	assert.True(t, IsProtected("/tickets/7"))
	assert.False(t, IsProtected("/ticketsx"))
	assert.False(t, IsProtected("/login"))
}
