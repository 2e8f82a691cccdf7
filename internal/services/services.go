package services

import (
	"github.com/audittrack/audittrack-api/internal/config"
	"github.com/audittrack/audittrack-api/internal/repository"
	"github.com/audittrack/audittrack-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth   *AuthService
	User   *UserService
	Audit  *AuditService
	Import *ImportService
	Export *ExportService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, storage *storage.LocalStorage, cfg *config.Config) *Services {
	return &Services{
		Auth:   NewAuthService(repos.User, cfg),
		User:   NewUserService(repos.User),
		Audit:  NewAuditService(repos.Audit, storage),
		Import: NewImportService(repos.Audit, storage),
		Export: NewExportService(repos.Audit),
	}
}
