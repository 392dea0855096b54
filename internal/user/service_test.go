package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ppum-cafe/foodcourt/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string) ([]user.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLanguage(ctx context.Context, id uuid.UUID, language string) error {
	args := m.Called(ctx, id, language)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(nil).
		Once()

	created, err := svc.Register(context.Background(), &user.User{
		Name:  "Aisha",
		Email: "aisha@example.com",
		// A registration request cannot smuggle in a privileged role.
		Role: user.RoleAdmin,
	}, "password123")

	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, created.Role)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive)

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_EmptyPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewService(mockRepo)

	_, err := svc.Register(context.Background(), &user.User{Email: "a@b.com"}, "")

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(user.ErrEmailExists).
		Once()

	_, err := svc.Register(context.Background(), &user.User{Email: "dup@example.com"}, "password123")

	require.ErrorIs(t, err, user.ErrEmailExists)
}

func TestUserService_CreateWithRole_StallOwnerNeedsStall(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewService(mockRepo)

	_, err := svc.CreateWithRole(context.Background(), &user.User{
		Email: "owner@example.com",
		Role:  user.RoleStallOwner,
	}, "password123")

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	stored := &user.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        "aisha@example.com",
		PasswordHash: string(hash),
	}

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := user.NewService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, stored.Email).Return(stored, nil).Once()
		mockRepo.On("UpdateLastLogin", mock.Anything, stored.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		u, err := svc.Authenticate(context.Background(), stored.Email, "password123")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, u.ID)
		assert.NotNil(t, u.LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := user.NewService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, stored.Email).Return(stored, nil).Once()

		_, err := svc.Authenticate(context.Background(), stored.Email, "nope")
		require.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := user.NewService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, user.ErrNotFound).Once()

		_, err := svc.Authenticate(context.Background(), "ghost@example.com", "password123")
		require.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestUserService_ListByRole_RejectsUnknownRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewService(mockRepo)

	_, err := svc.ListByRole(context.Background(), "superuser")
	require.Error(t, err)

	mockRepo.On("ListByRole", mock.Anything, "").Return([]user.User{}, nil).Once()
	_, err = svc.ListByRole(context.Background(), "")
	require.NoError(t, err)
}
