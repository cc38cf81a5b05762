package database

import (
	"github.com/trygglabs/trygg/internal/database/service"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	user    *service.UserService
	consent *service.ConsentService
	safety  *service.SafetyService
	stats   *service.StatsService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, logger *zap.Logger) *Service {
	userModel := repository.User()
	consentModel := repository.Consent()
	safetyModel := repository.Safety()
	alertModel := repository.Alert()
	auditModel := repository.Audit()
	statsModel := repository.Stats()

	return &Service{
		user:    service.NewUser(db, userModel, auditModel, logger),
		consent: service.NewConsent(db, userModel, consentModel, auditModel, logger),
		safety:  service.NewSafety(db, userModel, safetyModel, alertModel, auditModel, logger),
		stats:   service.NewStats(statsModel, consentModel, safetyModel, alertModel, logger),
	}
}

// User returns the user service.
func (s *Service) User() *service.UserService {
	return s.user
}

// Consent returns the consent service.
func (s *Service) Consent() *service.ConsentService {
	return s.consent
}

// Safety returns the safety service.
func (s *Service) Safety() *service.SafetyService {
	return s.safety
}

// Stats returns the stats service.
func (s *Service) Stats() *service.StatsService {
	return s.stats
}
