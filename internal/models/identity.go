package models

import "time"

// User is a provisioned identity. UserID is the token subject.
type User struct {
	UserID      string  `gorm:"primaryKey;size:255"`
	Email       *string `gorm:"size:320"`
	DisplayName *string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
