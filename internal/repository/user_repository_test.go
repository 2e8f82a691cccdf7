package repository

import (
	"context"
	"testing"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &models.User{
		CompanyName:  "Acme",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
	}
	assert.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	found, err := repo.FindByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "Acme", found.CompanyName)

	byID, err := repo.FindByID(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h", Role: "user"}))

	err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h2", Role: "user"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// The failed insert must not add a row
	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_UsernameTaken(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	a := &models.User{Username: "alice", PasswordHash: "h", Role: "user"}
	assert.NoError(t, repo.Create(ctx, a))

	taken, err := repo.UsernameTaken(ctx, "alice", 0)
	assert.NoError(t, err)
	assert.True(t, taken)

	// Excluding the owner itself is not a collision
	taken, err = repo.UsernameTaken(ctx, "alice", a.ID)
	assert.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.UsernameTaken(ctx, "bob", 0)
	assert.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &models.User{Username: "alice", PasswordHash: "h", Role: "user"}
	assert.NoError(t, repo.Create(ctx, user))

	rows, err := repo.UpdateFields(ctx, user.ID, map[string]interface{}{"email": "a@example.com", "department": "QA"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	found, _ := repo.FindByID(ctx, user.ID)
	assert.Equal(t, "a@example.com", found.Email)
	assert.Equal(t, "QA", found.Department)

	rows, err = repo.UpdateFields(ctx, 9999, map[string]interface{}{"email": "x@example.com"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestUserRepository_SetToken(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &models.User{Username: "alice", PasswordHash: "h", Role: "user"}
	assert.NoError(t, repo.Create(ctx, user))

	assert.NoError(t, repo.SetToken(ctx, user.ID, "token-1"))
	found, _ := repo.FindByID(ctx, user.ID)
	assert.Equal(t, "token-1", *found.Token)

	assert.NoError(t, repo.SetToken(ctx, user.ID, "token-2"))
	found, _ = repo.FindByID(ctx, user.ID)
	assert.Equal(t, "token-2", *found.Token)
}

func TestUserRepository_DeleteAndList(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	a := &models.User{CompanyName: "Beta", Username: "bob", PasswordHash: "h", Role: "user"}
	b := &models.User{CompanyName: "Acme", Username: "alice", PasswordHash: "h", Role: "user"}
	assert.NoError(t, repo.Create(ctx, a))
	assert.NoError(t, repo.Create(ctx, b))

	users, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username, "ordered by company name first")

	rows, err := repo.Delete(ctx, a.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.Delete(ctx, a.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	users, _ = repo.List(ctx)
	assert.Len(t, users, 1)
}
