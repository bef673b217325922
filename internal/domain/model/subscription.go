package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// PlanStatus mirrors the gateway's subscription status vocabulary
type PlanStatus string

const (
	PlanStatusActive            PlanStatus = "active"
	PlanStatusTrialing          PlanStatus = "trialing"
	PlanStatusPastDue           PlanStatus = "past_due"
	PlanStatusCanceled          PlanStatus = "canceled"
	PlanStatusUnpaid            PlanStatus = "unpaid"
	PlanStatusIncomplete        PlanStatus = "incomplete"
	PlanStatusIncompleteExpired PlanStatus = "incomplete_expired"
	PlanStatusPaused            PlanStatus = "paused"
)

// Scan implements sql.Scanner interface
func (s *PlanStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PlanStatus(v)
	case []byte:
		*s = PlanStatus(v)
	default:
		*s = ""
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PlanStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Subscription is the local mirror of a user's gateway subscription.
// Every reconciled event overwrites it with the gateway's authoritative
// values; entitlement decisions read only this record.
type Subscription struct {
	ID                     int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                 uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ProviderSubscriptionID *string    `gorm:"column:provider_subscription_id;unique;size:100" json:"provider_subscription_id,omitempty"`
	PlanName               *string    `gorm:"size:200" json:"plan_name,omitempty"`
	PlanStatus             PlanStatus `gorm:"type:plan_status;index" json:"plan_status"`
	CurrentPeriodStart     *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd      bool       `gorm:"default:false" json:"cancel_at_period_end"`
	TrialStart             *time.Time `json:"trial_start,omitempty"`
	TrialEnd               *time.Time `json:"trial_end,omitempty"`
	ProviderData           JSONB      `gorm:"column:provider_data;type:jsonb" json:"provider_data,omitempty"`
	CreatedAt              time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsSubscribed reports whether the plan status grants entitlement.
func (s *Subscription) IsSubscribed() bool {
	return s.PlanStatus == PlanStatusActive || s.PlanStatus == PlanStatusTrialing
}

// IsOnTrial reports whether the user is currently in a trial period.
func (s *Subscription) IsOnTrial() bool {
	if s.TrialEnd == nil {
		return false
	}
	return s.PlanStatus == PlanStatusTrialing && time.Now().Before(*s.TrialEnd)
}

// HasPlan reports whether the user holds a specific plan.
func (s *Subscription) HasPlan(planName string) bool {
	if !s.IsSubscribed() || s.PlanName == nil {
		return false
	}
	return *s.PlanName == planName
}

// HasAnyPlan reports whether the user holds any of the given plans.
func (s *Subscription) HasAnyPlan(planNames ...string) bool {
	if !s.IsSubscribed() || s.PlanName == nil {
		return false
	}
	for _, name := range planNames {
		if *s.PlanName == name {
			return true
		}
	}
	return false
}

// IsCurrent reports whether the subscription has not run past its
// billing period end.
func (s *Subscription) IsCurrent() bool {
	if !s.IsSubscribed() || s.CurrentPeriodEnd == nil {
		return false
	}
	return time.Now().Before(*s.CurrentPeriodEnd)
}

// DaysUntilRenewal returns whole days left in the current period, or -1
// when no period end is known.
func (s *Subscription) DaysUntilRenewal() int {
	if s.CurrentPeriodEnd == nil {
		return -1
	}
	days := int(time.Until(*s.CurrentPeriodEnd).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
