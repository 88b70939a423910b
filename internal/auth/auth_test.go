package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	tok, err := tm.GenerateToken(7)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), tok.ExpiresAt, 2*time.Second)

	claims, err := tm.ParseToken(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, tok.ID, claims.ID)
	assert.Equal(t, "7", claims.Subject)
}

func TestParseTokenRejectsForeignSecretAndExpiry(t *testing.T) {
	tok, err := NewTokenManager("one", 5).GenerateToken(1)
	require.NoError(t, err)
	_, err = NewTokenManager("two", 5).ParseToken(tok.Value)
	assert.Error(t, err)

	old := NewTokenManager("one", 1)
	old.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := old.GenerateToken(1)
	require.NoError(t, err)
	_, err = NewTokenManager("one", 1).ParseToken(expired.Value)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.Error(t, ComparePassword(hash, "hunter23"))
}

func TestMemoryRevoker(t *testing.T) {
	r := NewMemoryRevoker()
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "a", time.Now().Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "b", time.Now().Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager, *MemoryRevoker, *domain.User) {
	t.Helper()
	store := memory.NewStore()
	user := &domain.User{Name: "Ada", Username: "ada", Email: "ada@company.com", PasswordHash: "x"}
	require.NoError(t, store.Repos().Users.Create(context.Background(), user))

	tm := NewTokenManager("secret", 5)
	revoker := NewMemoryRevoker()
	mw := NewAuthMiddleware(tm, store.Repos().Users, revoker)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
	}})
	app.Get("/me", mw.Handle, RequireAgent(), func(c *fiber.Ctx) error {
		agent, err := CurrentAgent(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": agent.ID})
	})
	return app, tm, revoker, user
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, revoker, user := newProtectedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := tm.GenerateToken(user.ID)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, revoker.Revoke(context.Background(), tok.ID, tok.ExpiresAt))
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	app, tm, _, _ := newProtectedApp(t)
	tok, err := tm.GenerateToken(999)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
