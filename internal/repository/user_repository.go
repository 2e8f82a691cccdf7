package repository

import (
	"context"
	"errors"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateUsername is returned when a create or update collides
// with the unique username index.
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository defines the interface for user data access
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	SetToken(ctx context.Context, id uint, token string) error
	Delete(ctx context.Context, id uint) (int64, error)
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// UpdateFields applies a partial update and reports how many rows matched
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return 0, ErrDuplicateUsername
		}
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetToken stores a freshly issued session token, replacing any prior one
func (r *userRepository) SetToken(ctx context.Context, id uint, token string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("token", token).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	return result.RowsAffected, result.Error
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("company_name, username").
		Find(&users).Error
	return users, err
}
