package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avolkau/bookvault/internal/config"
	"github.com/avolkau/bookvault/internal/entities"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Token{}))

	return NewService(db, config.Auth{BcryptCost: 4})
}

func TestService_Register(t *testing.T) {
	svc := setupTestService(t)

	user, token, err := svc.Register("alice", "p1", "p1")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "p1", user.PasswordHash)
	assert.Len(t, token, 64)
}

func TestService_Register_Validation(t *testing.T) {
	svc := setupTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		wantErr  error
	}{
		{"missing username", "", "p1", "p1", ErrFieldsRequired},
		{"missing password", "alice", "", "", ErrFieldsRequired},
		{"missing confirmation", "alice", "p1", "", ErrFieldsRequired},
		{"mismatched passwords", "alice", "p1", "p2", ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(tt.username, tt.password, tt.confirm)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Register_Conflict(t *testing.T) {
	svc := setupTestService(t)

	_, _, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	_, _, err = svc.Register("alice", "p2", "p2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Login(t *testing.T) {
	svc := setupTestService(t)

	registered, _, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	user, token, err := svc.Login("alice", "p1")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Len(t, token, 64)
}

func TestService_Login_UnknownUser(t *testing.T) {
	svc := setupTestService(t)

	_, _, err := svc.Login("nobody", "p1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc := setupTestService(t)

	_, _, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	_, _, err = svc.Login("alice", "p2")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestService_Login_SupersedesPriorToken(t *testing.T) {
	svc := setupTestService(t)

	_, t1, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	_, t2, err := svc.Login("alice", "p1")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	// The first token no longer authenticates
	_, err = svc.ValidateToken(t1)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The second does
	user, err := svc.ValidateToken(t2)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestService_ValidateToken(t *testing.T) {
	svc := setupTestService(t)

	registered, token, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	user, err := svc.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestService_ValidateToken_Invalid(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.ValidateToken("bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Logout(t *testing.T) {
	svc := setupTestService(t)

	_, token, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(token))

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// Full lifecycle: register, conflicting register, login supersedes the
// registration token.
func TestService_TokenLifecycleScenario(t *testing.T) {
	svc := setupTestService(t)

	_, t1, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	_, _, err = svc.Register("alice", "p2", "p2")
	assert.ErrorIs(t, err, ErrUserExists)

	_, t2, err := svc.Login("alice", "p1")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	_, err = svc.ValidateToken(t1)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
