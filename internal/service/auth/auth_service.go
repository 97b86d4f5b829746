package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only hashes the first 72 bytes and rejects longer input.
const maxPasswordBytes = 72

type AuthUseCase interface {
	Register(ctx context.Context, username, password string) (*security.Principal, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	LoadPrincipal(ctx context.Context, username string) (*security.Principal, error)
	Authenticate(ctx context.Context, token string) (*security.Principal, error)
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal *security.Principal
}

type AuthService struct {
	users  repository.UserRepository
	tokens *security.TokenManager
	cost   int
	log    logrus.FieldLogger
}

func NewAuthService(users repository.UserRepository, tokens *security.TokenManager, log logrus.FieldLogger) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcrypt.DefaultCost, log: log}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*security.Principal, error) {
	username = strings.TrimSpace(username)

	v := &domain.ValidationError{}
	if n := utf8.RuneCountInString(username); n < 3 || n > 64 {
		v.Add("username", "must be between 3 and 64 characters")
	}
	if utf8.RuneCountInString(password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		v.Add("password", fmt.Sprintf("must not exceed %d bytes", maxPasswordBytes))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.Detailed(domain.ErrUserExists, "username %s is already taken", username)
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return security.NewPrincipal(user), nil
}

// Login never reveals whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	principal, err := s.LoadPrincipal(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", principal.ID).Info("user logged in")
	return &Session{Token: token, ExpiresAt: expires, Principal: principal}, nil
}

func (s *AuthService) LoadPrincipal(ctx context.Context, username string) (*security.Principal, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return security.NewPrincipal(user), nil
}

// Authenticate resolves a bearer token to the principal of a still existing user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*security.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.Detailed(domain.ErrUnauthenticated, "invalid or expired token")
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, domain.Detailed(domain.ErrUnauthenticated, "invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Detailed(domain.ErrUnauthenticated, "user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return security.NewPrincipal(user), nil
}

var _ AuthUseCase = (*AuthService)(nil)
