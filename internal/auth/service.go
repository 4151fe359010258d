package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	"tradejournal/internal/repository"
)

// tokenPrefix identifies journal bearer tokens so leaked strings can be
// recognized by scanners.
const tokenPrefix = "tj_"

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Service issues credentials and resolves bearer tokens. Passwords are
// stored as sha256(salt || password) with a per-user random salt; tokens
// are opaque random strings of which only the sha256 digest is persisted.
type Service struct {
	Repo repository.Repository
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func hashPassword(saltHex, password string) string {
	h := sha256.Sum256([]byte(saltHex + password))
	return hex.EncodeToString(h[:])
}

func newToken() (raw, hash string, err error) {
	buf := make([]byte, 24)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	raw = tokenPrefix + strings.ToLower(b32.EncodeToString(buf))
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}

func (s *Service) Register(ctx context.Context, in Credentials) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: username and a password of at least 8 characters are required", apperr.ErrValidation)
	}
	existing, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username already taken", apperr.ErrValidation)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	user := &models.User{
		Username:    username,
		SaltHex:     hex.EncodeToString(salt),
		PassHashHex: "",
	}
	user.PassHashHex = hashPassword(user.SaltHex, in.Password)
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, in Credentials) (*LoginResult, error) {
	user, err := s.Repo.GetUserByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	computed := hashPassword(user.SaltHex, in.Password)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(user.PassHashHex)) != 1 {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}

	raw, hash, err := newToken()
	if err != nil {
		return nil, err
	}
	token := &models.AuthToken{UserID: user.ID, TokenHash: hash}
	if err := s.Repo.CreateAuthToken(ctx, token); err != nil {
		return nil, err
	}
	return &LoginResult{Token: raw, User: user}, nil
}

// Authenticate resolves a raw bearer token to its user and records the use.
func (s *Service) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	if !strings.HasPrefix(raw, tokenPrefix) {
		return nil, fmt.Errorf("%w: malformed token", apperr.ErrUnauthenticated)
	}
	sum := sha256.Sum256([]byte(raw))
	token, err := s.Repo.GetAuthTokenByHash(ctx, hex.EncodeToString(sum[:]))
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: unknown token", apperr.ErrUnauthenticated)
	}
	user, err := s.Repo.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: token user no longer exists", apperr.ErrUnauthenticated)
	}
	_ = s.Repo.TouchAuthToken(ctx, token.ID, time.Now().UTC())
	return user, nil
}
