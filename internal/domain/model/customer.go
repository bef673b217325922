package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer maps a local user to the payment gateway's customer record
// and carries the billing details synced from the gateway.
type Customer struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ProviderCustomerID   string    `gorm:"column:provider_customer_id;unique;not null;size:100;index" json:"provider_customer_id"`
	Email                string    `gorm:"size:255" json:"email"`
	Name                 string    `gorm:"size:200" json:"name"`
	DefaultPaymentMethod *string   `gorm:"size:100" json:"default_payment_method,omitempty"`
	CreatedAt            time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt            time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Customer) TableName() string {
	return "customers"
}
