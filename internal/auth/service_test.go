package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	gormrepository "tradejournal/internal/repository/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.AuthToken{}))
	return &Service{Repo: gormrepository.New(db)}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), Credentials{
		Username: "alice", Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.SaltHex)
	assert.NotEqual(t, "correct-horse", user.PassHashHex)

	result, err := svc.Login(context.Background(), Credentials{
		Username: "alice", Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Token, "tj_"), result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	resolved, err := svc.Authenticate(context.Background(), result.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(context.Background(), Credentials{
		Username: "alice", Password: "correct-horse",
	})
	assert.NoError(t, err)

	_, err = svc.Login(context.Background(), Credentials{
		Username: "alice", Password: "wrong-horse",
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Login(context.Background(), Credentials{
		Username: "nobody", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), Credentials{Username: " ", Password: "long-enough"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(context.Background(), Credentials{Username: "alice", Password: "short"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(context.Background(), Credentials{Username: "alice", Password: "long-enough"})
	assert.NoError(t, err)
	_, err = svc.Register(context.Background(), Credentials{Username: "alice", Password: "long-enough"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAuthenticateRejectsUnknownTokens(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Authenticate(context.Background(), "tj_deadbeefdeadbeefdeadbeef")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokensAreUnique(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(context.Background(), Credentials{
		Username: "alice", Password: "correct-horse",
	})
	assert.NoError(t, err)

	a, err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "correct-horse"})
	assert.NoError(t, err)
	b, err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "correct-horse"})
	assert.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}
