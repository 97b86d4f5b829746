package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newService(t *testing.T) (*AuthService, *MockUserRepository) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := &MockUserRepository{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	s := NewAuthService(repo, security.NewTokenManager("secret", "flightsearch", time.Hour), logger)
	s.cost = bcrypt.MinCost
	return s, repo
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 7, Username: "alice", PasswordHash: string(hash)}
}

func TestAuthService_Register(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
	})).Run(func(args mock.Arguments) { args.Get(1).(*domain.User).ID = 7 }).Return(nil).Once()

	p, err := s.Register(ctx, " alice ", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, []string{security.AuthorityUser}, p.Authorities)
}

func TestAuthService_Register_Validation(t *testing.T) {
	s, _ := newService(t)

	_, err := s.Register(context.Background(), "al", "short")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	s, repo := newService(t)

	// 40 characters, 80 bytes.
	_, err := s.Register(context.Background(), "alice", strings.Repeat("é", 40))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "password", verr.Violations[0].Field)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(domain.ErrUserExists).Once()

	_, err := s.Register(ctx, "alice", "s3cret-pass")

	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthService_Login(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()

	repo.On("GetByUsername", ctx, "alice").Return(storedUser(t, "s3cret-pass"), nil).Once()

	session, err := s.Login(ctx, "alice", "s3cret-pass")

	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "alice", session.Principal.Username)

	claims, err := s.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(repo *MockUserRepository)
	}{
		{
			name: "unknown user",
			setup: func(repo *MockUserRepository) {
				repo.On("GetByUsername", mock.Anything, "alice").Return(nil, repository.ErrNotFound).Once()
			},
		},
		{
			name: "wrong password",
			setup: func(repo *MockUserRepository) {
				repo.On("GetByUsername", mock.Anything, "alice").Return(storedUser(t, "other-pass"), nil).Once()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, repo := newService(t)
			tc.setup(repo)

			session, err := s.Login(context.Background(), "alice", "s3cret-pass")

			assert.Nil(t, session)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()

	token, _, err := s.tokens.Issue(&security.Principal{ID: 7, Username: "alice"})
	require.NoError(t, err)

	repo.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Username: "alice"}, nil).Once()
	p, err := s.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	repo.On("GetByID", ctx, int64(7)).Return(nil, repository.ErrNotFound).Once()
	_, err = s.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = s.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
