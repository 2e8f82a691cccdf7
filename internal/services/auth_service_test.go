package services

import (
	"context"
	"testing"

	"github.com/audittrack/audittrack-api/internal/config"
	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/audittrack/audittrack-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindByID       func(ctx context.Context, id uint) (*models.User, error)
	mockFindByUsername func(ctx context.Context, username string) (*models.User, error)
	mockUsernameTaken  func(ctx context.Context, username string, excludeID uint) (bool, error)
	mockCreate         func(ctx context.Context, user *models.User) error
	mockUpdateFields   func(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	mockSetToken       func(ctx context.Context, id uint, token string) error
	mockDelete         func(ctx context.Context, id uint) (int64, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.mockFindByUsername(ctx, username)
}

func (m *mockUserRepo) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return m.mockUsernameTaken(ctx, username, excludeID)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.mockCreate(ctx, user)
}

func (m *mockUserRepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	return m.mockUpdateFields(ctx, id, fields)
}

func (m *mockUserRepo) SetToken(ctx context.Context, id uint, token string) error {
	return m.mockSetToken(ctx, id, token)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uint) (int64, error) {
	return m.mockDelete(ctx, id)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testConfig())

	hash, _ := HashPassword("correct-password")
	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return &models.User{ID: 1, Username: username, PasswordHash: hash}, nil
	}

	result, err := service.Login(context.Background(), "alice", "wrong-password")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testConfig())

	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}

	result, err := service.Login(context.Background(), "ghost", "password")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_DatabaseError(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testConfig())

	// An outage must not read as bad credentials
	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return nil, assert.AnError
	}

	result, err := service.Login(context.Background(), "alice", "password")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_StoresIssuedToken(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testConfig())

	hash, _ := HashPassword("password123")
	user := &models.User{ID: 7, Username: "alice", Role: models.RoleAdmin, PasswordHash: hash}

	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}
	mockRepo.mockFindByID = func(ctx context.Context, id uint) (*models.User, error) {
		return user, nil
	}
	mockRepo.mockSetToken = func(ctx context.Context, id uint, token string) error {
		user.Token = &token
		return nil
	}

	result, err := service.Login(context.Background(), "alice", "password123")
	assert.NoError(t, err)
	assert.Equal(t, uint(7), result.ID)
	assert.Equal(t, "admin", result.Role)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, result.Token, *user.Token)

	verified, err := service.VerifyToken(context.Background(), result.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestAuthService_VerifyToken_RotatedTokenRejected(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testConfig())

	hash, _ := HashPassword("password123")
	user := &models.User{ID: 3, Username: "bob", Role: models.RoleUser, PasswordHash: hash}

	mockRepo.mockFindByUsername = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}
	mockRepo.mockFindByID = func(ctx context.Context, id uint) (*models.User, error) {
		return user, nil
	}
	mockRepo.mockSetToken = func(ctx context.Context, id uint, token string) error {
		user.Token = &token
		return nil
	}

	first, err := service.Login(context.Background(), "bob", "password123")
	assert.NoError(t, err)

	// A second login overwrites the stored token
	second, err := service.Login(context.Background(), "bob", "password123")
	assert.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = service.VerifyToken(context.Background(), first.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	verified, err := service.VerifyToken(context.Background(), second.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestAuthService_VerifyToken_Garbage(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testConfig())

	_, err := service.VerifyToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = service.VerifyToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_VerifyToken_ExpiredToken(t *testing.T) {
	mockRepo := &mockUserRepo{}
	cfg := testConfig()
	cfg.TokenTTLHours = -1
	service := NewAuthService(mockRepo, cfg)

	user := &models.User{ID: 5, Username: "carol", Role: models.RoleUser}
	token, err := service.generateToken(user)
	assert.NoError(t, err)

	_, err = service.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
