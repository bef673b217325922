package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment status constants, mirroring the gateway's invoice outcomes
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment is a per-invoice payment audit record written when invoice
// events arrive. It never feeds entitlement decisions.
type Payment struct {
	ID                      int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                  uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ProviderInvoiceID       string     `gorm:"column:provider_invoice_id;unique;not null;size:100" json:"provider_invoice_id"`
	ProviderPaymentIntentID *string    `gorm:"column:provider_payment_intent_id;size:100" json:"provider_payment_intent_id,omitempty"`
	ProviderSubscriptionID  *string    `gorm:"column:provider_subscription_id;size:100;index" json:"provider_subscription_id,omitempty"`
	AmountCents             int64      `gorm:"not null" json:"amount_cents"`
	Currency                string     `gorm:"size:3;default:'usd'" json:"currency"`
	Status                  string     `gorm:"size:50;not null" json:"status"`
	FailureMessage          *string    `json:"failure_message,omitempty"`
	ReceiptURL              *string    `json:"receipt_url,omitempty"`
	PaidAt                  *time.Time `json:"paid_at,omitempty"`
	CreatedAt               time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
