package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application user that billing state attaches to.
// Customer and Subscription are first-class records keyed back to the
// user rather than columns spliced into the users table.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Email     string    `gorm:"unique;not null;size:255;index" json:"email"`
	Name      string    `gorm:"size:200" json:"name"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	// Relations
	Customer     *Customer     `gorm:"foreignKey:UserID" json:"customer,omitempty"`
	Subscription *Subscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
