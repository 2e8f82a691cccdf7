package services

import (
	"context"
	"errors"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/audittrack/audittrack-api/internal/repository"
)

// UserService handles admin user management
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List returns all users ordered by company name, then username
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// CreateUserInput carries the fields for user creation
type CreateUserInput struct {
	CompanyName string
	PlantName   string
	Username    string
	GenID       string
	Password    string
	Email       string
	Department  string
	Role        string
}

// Create hashes the password and inserts the user. A username collision
// reports ErrDuplicateUsername and leaves the table unchanged.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		CompanyName:  in.CompanyName,
		PlantName:    in.PlantName,
		Username:     in.Username,
		GenID:        in.GenID,
		PasswordHash: hash,
		Email:        in.Email,
		Department:   in.Department,
		Role:         in.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput carries optional fields for a partial update. Nil
// means "not supplied"; an empty password is ignored rather than hashed.
type UpdateUserInput struct {
	CompanyName *string
	PlantName   *string
	Username    *string
	GenID       *string
	Email       *string
	Department  *string
	Role        *string
	Password    *string
}

// Update applies only the supplied fields. Fails with ErrNoFields when
// nothing updatable was supplied, ErrDuplicateUsername when the new
// username belongs to a different user, and ErrUserNotFound when no row
// matched.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) error {
	if in.Username != nil {
		taken, err := s.userRepo.UsernameTaken(ctx, *in.Username, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}
	}

	fields := map[string]interface{}{}
	if in.CompanyName != nil {
		fields["company_name"] = *in.CompanyName
	}
	if in.PlantName != nil {
		fields["plant_name"] = *in.PlantName
	}
	if in.Username != nil {
		fields["username"] = *in.Username
	}
	if in.GenID != nil {
		fields["gen_id"] = *in.GenID
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Department != nil {
		fields["department"] = *in.Department
	}
	if in.Role != nil {
		fields["role"] = *in.Role
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return err
		}
		fields["password_hash"] = hash
	}

	if len(fields) == 0 {
		return ErrNoFields
	}

	rows, err := s.userRepo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return ErrDuplicateUsername
		}
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user row
func (s *UserService) Delete(ctx context.Context, id uint) error {
	rows, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
