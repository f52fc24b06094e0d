package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	mu    sync.Mutex
	items map[id.ID]*User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: make(map[id.ID]*User)}
}

func (f *fakeUsers) Create(ctx context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUsers) Update(ctx context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[user.ID]; !ok {
		return apperror.NewNotFound("user", user.ID.String())
	}
	cp := *user
	f.items[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, userID id.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, userID)
	return nil
}

func (f *fakeUsers) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]User, 0, len(f.items))
	for _, u := range f.items {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (f *fakeUsers) Exists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeTokens struct {
	mu    sync.Mutex
	items map[string]*RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{items: make(map[string]*RefreshToken)}
}

func (f *fakeTokens) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.items[token.TokenHash] = &cp
	return nil
}

func (f *fakeTokens) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", tokenHash)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokens) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokens) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func (f *fakeTokens) activeCount(userID id.ID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.items {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

func newTestService(users *fakeUsers, tokens *fakeTokens) *Service {
	jwtSvc := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		Issuer:         "test",
		AccessTokenTTL: time.Hour,
	})
	cfg := DefaultServiceConfig()
	cfg.MaxLoginAttempts = 3
	return NewService(users, tokens, txStub{}, jwtSvc, cfg)
}

func seedUser(t *testing.T, users *fakeUsers, email, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := NewUser(email, string(hash))
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestService_Register(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(users, newFakeTokens())
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:     "clerk@example.com",
		Password:  "password123",
		FirstName: "Pat",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleClerk, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.PasswordHash)

	// Duplicate email is rejected.
	_, err = svc.Register(ctx, RegisterRequest{Email: "clerk@example.com", Password: "password123"})
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
}

func TestService_Register_ShortPassword(t *testing.T) {
	svc := newTestService(newFakeUsers(), newFakeTokens())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "clerk@example.com",
		Password: "short",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_Login(t *testing.T) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := newTestService(users, tokens)
	ctx := context.Background()

	seedUser(t, users, "clerk@example.com", "password123")

	pair, user, err := svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, "clerk@example.com", user.Email)
	assert.Equal(t, 1, tokens.activeCount(user.ID))
}

func TestService_Login_WrongPassword(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(users, newFakeTokens())
	ctx := context.Background()

	u := seedUser(t, users, "clerk@example.com", "password123")

	_, _, err := svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "wrong"})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
}

func TestService_Login_LockoutAfterMaxAttempts(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(users, newFakeTokens())
	ctx := context.Background()

	seedUser(t, users, "clerk@example.com", "password123")

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "wrong"})
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	}

	// Even the correct password is rejected while locked.
	_, _, err := svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "password123"})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestService_Login_UnknownEmail(t *testing.T) {
	svc := newTestService(newFakeUsers(), newFakeTokens())

	_, _, err := svc.Login(context.Background(), Credentials{Email: "nobody@example.com", Password: "x"})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestService_RefreshToken_Rotation(t *testing.T) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := newTestService(users, tokens)
	ctx := context.Background()

	u := seedUser(t, users, "clerk@example.com", "password123")

	pair, _, err := svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "password123"})
	require.NoError(t, err)

	next, err := svc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The rotated token is single-use.
	_, err = svc.RefreshToken(ctx, pair.RefreshToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	assert.Equal(t, 1, tokens.activeCount(u.ID))
}

func TestService_ChangePassword(t *testing.T) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := newTestService(users, tokens)
	ctx := context.Background()

	u := seedUser(t, users, "clerk@example.com", "password123")
	_, _, err := svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "password123"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, "wrong", "newpassword1")
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "password123", "newpassword1"))

	// All sessions are revoked after a password change.
	assert.Equal(t, 0, tokens.activeCount(u.ID))

	_, _, err = svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "newpassword1"})
	require.NoError(t, err)
}

func TestService_SetRole(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(users, newFakeTokens())
	ctx := context.Background()

	u := seedUser(t, users, "clerk@example.com", "password123")

	assert.Error(t, svc.SetRole(ctx, u.ID, "superuser"))

	require.NoError(t, svc.SetRole(ctx, u.ID, RoleManager))
	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleManager, stored.Role)
}
