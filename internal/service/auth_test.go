package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func newTestAuthService(t *testing.T) (*AuthService, *repo.GormRepo, *recordingPublisher) {
	t.Helper()
	r := repo.New(testdb.Open(t))
	pub := &recordingPublisher{}
	return &AuthService{
		Repo:          r,
		Events:        pub,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}, r, pub
}

func countRows(t *testing.T, r *repo.GormRepo, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(model).Count(&n).Error)
	return n
}

func TestAuthService_Register_CreatesUserAndEmptyCart(t *testing.T) {
	t.Parallel()

	svc, r, pub := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  alice ", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	cart, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)
	lines, err := r.CartLines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.EqualValues(t, 1, countRows(t, r, &models.Cart{}))

	assert.Equal(t, []string{"user_registered"}, pub.types())
	assert.Equal(t, TopicUsers, pub.events[0].Topic)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc, r, pub := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "taken", "", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: " ", password: "secret1"},
		{name: "empty password", username: "user", password: ""},
		{name: "short password", username: "user", password: "12345"},
		{name: "duplicate username", username: "taken", password: "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Register(ctx, tt.username, "", tt.password)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.EqualValues(t, 1, countRows(t, r, &models.User{}))
	assert.EqualValues(t, 1, countRows(t, r, &models.Cart{}))
	assert.Len(t, pub.types(), 1)
}

func TestAuthService_Register_ShortPasswordProperty(t *testing.T) {
	t.Parallel()

	svc, r, _ := newTestAuthService(t)
	for i := 0; i < 5; i++ {
		pw := gofakeit.Password(true, true, true, false, false, i+1)
		_, err := svc.Register(context.Background(), gofakeit.Username(), "", pw)
		assert.ErrorIs(t, err, ErrValidation, "password %q", pw)
	}
	assert.Zero(t, countRows(t, r, &models.User{}))
	assert.Zero(t, countRows(t, r, &models.Cart{}))
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "bob", "", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := svc.Login(ctx, "bob", "hunter22")
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.Equal(t, "bob", claims.Username)

	next, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.RefreshToken, next.RefreshToken)
	claims, err = tokens.AccessClaimsFromToken(next.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Username)

	// rotated tokens cannot be replayed
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, next.RefreshToken))
	_, err = svc.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_RejectsForeignTokens(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	unknown, _, err := tokens.SignRefresh(1, tokens.NewJTI(), svc.RefreshSecret, time.Now(), time.Hour)
	require.NoError(t, err)
	access, _, err := tokens.SignAccess(1, "x", svc.RefreshSecret, time.Now(), time.Hour)
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", unknown, access} {
		_, err := svc.Refresh(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken, strings.TrimSpace(tok))
	}
}

func TestAuthService_Refresh_RejectsTokenNotMatchingStoredHash(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "dora", "", "hunter22")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "dora", "hunter22")
	require.NoError(t, err)

	claims, err := tokens.RefreshClaimsFromToken(res.RefreshToken, svc.RefreshSecret)
	require.NoError(t, err)

	// same jti and user, different token bytes
	forged, _, err := tokens.SignRefresh(u.ID, claims.ID, svc.RefreshSecret, time.Now().Add(-time.Minute), time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, res.RefreshToken, forged)

	_, err = svc.Refresh(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// the genuine token was not consumed
	_, err = svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_PublishFailureDoesNotFailRegister(t *testing.T) {
	t.Parallel()

	svc, _, pub := newTestAuthService(t)
	pub.err = errors.New("broker down")

	_, err := svc.Register(context.Background(), "carol", "", "secret1")
	assert.NoError(t, err)
}
