package handlers

import (
	"github.com/audittrack/audittrack-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health *HealthHandler
	Auth   *AuthHandler
	User   *UserHandler
	Audit  *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(),
		Auth:   NewAuthHandler(svcs.Auth),
		User:   NewUserHandler(svcs.User),
		Audit:  NewAuditHandler(svcs.Audit, svcs.Import, svcs.Export),
	}
}
