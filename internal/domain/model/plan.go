package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan represents one entry in the subscription plan catalog, synced
// from the gateway's product/price objects.
type Plan struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string          `gorm:"unique;not null;size:100;index" json:"name"`
	DisplayName       string          `gorm:"not null;size:200" json:"display_name"`
	ProviderPriceID   string          `gorm:"column:provider_price_id;unique;not null;size:100" json:"provider_price_id"`
	ProviderProductID string          `gorm:"column:provider_product_id;not null;size:100" json:"provider_product_id"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency          string          `gorm:"size:3;default:'usd'" json:"currency"`
	Interval          string          `gorm:"size:20" json:"interval"`
	TrialDays         int             `gorm:"default:0" json:"trial_days"`
	Features          Features        `gorm:"type:jsonb;default:'{}'" json:"features"`
	SortOrder         int             `gorm:"default:0" json:"sort_order"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"default:now()" json:"updated_at"`
}

// Features represents plan features as JSONB
type Features = JSONB

// TableName specifies the table name for GORM
func (Plan) TableName() string {
	return "plans"
}
