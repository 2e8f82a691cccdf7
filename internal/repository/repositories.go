package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User  UserRepository
	Audit AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:  NewUserRepository(db),
		Audit: NewAuditRepository(db),
	}
}
