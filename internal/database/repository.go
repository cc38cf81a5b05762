package database

import (
	"github.com/trygglabs/trygg/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	user    *models.UserModel
	consent *models.ConsentModel
	safety  *models.SafetyModel
	alert   *models.AlertModel
	audit   *models.AuditModel
	stats   *models.StatsModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		user:    models.NewUser(db, logger),
		consent: models.NewConsent(db, logger),
		safety:  models.NewSafety(db, logger),
		alert:   models.NewAlert(db, logger),
		audit:   models.NewAudit(db, logger),
		stats:   models.NewStats(db, logger),
	}
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Consent returns the consent model repository.
func (r *Repository) Consent() *models.ConsentModel {
	return r.consent
}

// Safety returns the safety model repository.
func (r *Repository) Safety() *models.SafetyModel {
	return r.safety
}

// Alert returns the alert model repository.
func (r *Repository) Alert() *models.AlertModel {
	return r.alert
}

// Audit returns the audit model repository.
func (r *Repository) Audit() *models.AuditModel {
	return r.audit
}

// Stats returns the stats model repository.
func (r *Repository) Stats() *models.StatsModel {
	return r.stats
}
