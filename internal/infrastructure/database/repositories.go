package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumenhq/paysvc/internal/adapter/repository"
	domainRepo "github.com/lumenhq/paysvc/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	User         domainRepo.UserRepository
	Customer     domainRepo.CustomerRepository
	Subscription domainRepo.SubscriptionRepository
	Payment      domainRepo.PaymentRepository
	Plan         repository.PlanRepository
	Webhook      repository.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db),
		Customer:     repository.NewCustomerRepository(db),
		Subscription: repository.NewSubscriptionRepository(db, logger),
		Payment:      repository.NewPaymentRepository(db, logger),
		Plan:         repository.NewPlanRepository(db, logger),
		Webhook:      repository.NewWebhookEventRepository(db, logger),
	}
}
