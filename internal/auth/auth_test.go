package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticketapp/internal/domain"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

func TestPasswordHasher_Bcrypt(t *testing.T) {
	h := NewPasswordHasher(true, bcrypt.MinCost)

	stored, err := h.Encode("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored)
	assert.True(t, h.Matches(stored, "s3cret"))
	assert.False(t, h.Matches(stored, "wrong"))
}

func TestPasswordHasher_BcryptLongPassword(t *testing.T) {
	h := NewPasswordHasher(true, bcrypt.MinCost)
	long := strings.Repeat("p", 100)

	stored, err := h.Encode(long)
	require.NoError(t, err)
	assert.True(t, h.Matches(stored, long))
	assert.False(t, h.Matches(stored, long[:72]), "bytes past 72 still count")
	assert.False(t, h.Matches(stored, long+"p"))
}

func TestPasswordHasher_PlainAndLegacy(t *testing.T) {
	plain := NewPasswordHasher(false, 0)
	stored, err := plain.Encode("s3cret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", stored)

	hashing := NewPasswordHasher(true, bcrypt.MinCost)
	assert.True(t, hashing.Matches("s3cret", "s3cret"))
	assert.False(t, hashing.Matches("s3cret", "S3cret"))
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken(domain.Session{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email())
	assert.Equal(t, "Ada", claims.Name)
}

func TestTokenManager_RejectsExpiredAndForeign(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }
	token, _, err := tm.GenerateToken(domain.Session{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)

	other := NewTokenManager("other-secret", 1)
	foreign, _, err := other.GenerateToken(domain.Session{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = NewTokenManager("secret", 1).ParseToken(foreign)
	assert.Error(t, err)
}

type stubSessions struct {
	session *domain.Session
	err     error
}

func (s stubSessions) LoadSession(context.Context) (*domain.Session, error) {
	return s.session, s.err
}

func newProtectedApp(m *AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/me", m.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return errors.New("no principal")
		}
		return c.SendString(p.Session.Email)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	ada := domain.Session{Name: "Ada", Email: "ada@example.com"}
	token, _, err := tm.GenerateToken(ada)
	require.NoError(t, err)

	cases := []struct {
		name     string
		header   string
		sessions stubSessions
		status   int
		body     string
	}{
		{"missing header", "", stubSessions{session: &ada}, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"not bearer", "Basic abc", stubSessions{session: &ada}, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"garbage token", "Bearer nope", stubSessions{session: &ada}, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"no session", "Bearer " + token, stubSessions{}, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"other identity", "Bearer " + token, stubSessions{session: &domain.Session{Name: "Bob", Email: "bob@example.com"}}, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"store failure", "Bearer " + token, stubSessions{err: errors.New("down")}, http.StatusInternalServerError, apperrors.CodeInternal},
		{"match", "Bearer " + token, stubSessions{session: &ada}, http.StatusOK, "ada@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newProtectedApp(NewAuthMiddleware(tm, tc.sessions))
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.body, string(body))
		})
	}
}
