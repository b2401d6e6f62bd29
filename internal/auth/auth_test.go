package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-0123456789")

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) CreateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUsers) GetUser(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUsers) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGate_Login(t *testing.T) {
	store := testutil.SetupTestDB(t)
	testutil.SeedUser(t, store, "ada", "correct horse")

	gate, err := NewGate(store, testSecret, WithTTL(time.Hour))
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		wantErr  error
		name     string
		username string
		password string
	}{
		{name: "valid", username: "ada", password: "correct horse"},
		{name: "surrounding spaces in username", username: "  ada ", password: "correct horse"},
		{name: "wrong password", username: "ada", password: "battery staple", wantErr: ErrInvalidCredentials},
		{name: "unknown user", username: "grace", password: "correct horse", wantErr: ErrInvalidCredentials},
		{name: "empty password", username: "ada", password: "", wantErr: ErrInvalidCredentials},
		{name: "empty username", username: "  ", password: "correct horse", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := gate.Login(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ada", session.Username)
			assert.Equal(t, time.Hour, session.ExpiresAt.Sub(session.IssuedAt))
			assert.True(t, session.Valid(session.IssuedAt))
		})
	}
}

func TestGate_Login_StoreFailure(t *testing.T) {
	users := &mockUsers{}
	users.On("GetUser", mock.Anything, "ada").Return(nil, errors.New("disk on fire"))

	gate, err := NewGate(users, testSecret)
	require.NoError(t, err)

	_, err = gate.Login(context.Background(), "ada", "whatever")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "disk on fire")
	users.AssertExpectations(t)
}

func TestGate_TokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	users := &mockUsers{}
	gate, err := NewGate(users, testSecret, WithClock(fixedClock(now)))
	require.NoError(t, err)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	users.On("GetUser", mock.Anything, "ada").Return(&model.User{Username: "ada", PasswordHash: hash}, nil)

	session, err := gate.Login(context.Background(), "ada", "correct horse")
	require.NoError(t, err)

	token, err := gate.IssueToken(session)
	require.NoError(t, err)

	got, err := gate.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "ada", got.Username)
	assert.True(t, got.ExpiresAt.Equal(now.Add(DefaultTTL)))
}

func TestGate_Verify_Rejects(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gate, err := NewGate(&mockUsers{}, testSecret, WithClock(fixedClock(now)))
	require.NoError(t, err)

	session := &Session{
		ID:        [16]byte{1},
		Username:  "ada",
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	expired, err := gate.IssueToken(session)
	require.NoError(t, err)

	other, err := NewGate(&mockUsers{}, []byte("another-secret-9876543210"), WithClock(fixedClock(now)))
	require.NoError(t, err)
	session.ExpiresAt = now.Add(time.Hour)
	foreign, err := other.IssueToken(session)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "ada",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.ErrorIs(t, err, common.ErrUnauthorized)
		})
	}
}

func TestNewGate_Validation(t *testing.T) {
	_, err := NewGate(nil, testSecret)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewGate(&mockUsers{}, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestNewUser(t *testing.T) {
	user, err := NewUser(" grace ", "hopper1906")
	require.NoError(t, err)
	assert.Equal(t, "grace", user.Username)
	assert.NotEqual(t, "hopper1906", user.PasswordHash)

	_, err = NewUser("", "hopper1906")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewUser("grace", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	session := &Session{Username: "ada"}
	got, ok := SessionFrom(WithSession(context.Background(), session))
	require.True(t, ok)
	assert.Same(t, session, got)
}
