package services

import (
	"context"
	"fmt"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MeResult represents the API output format of the calling user
type MeResult struct {
	UserID      string  `json:"userId"`
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	GlobalRole  *string `json:"globalRole,omitempty"`
}

// ProvisionUser upserts the caller's user row, refreshing email and display
// name from the verified token.
func ProvisionUser(ctx context.Context, db *gorm.DB, id *authz.Identity) error {
	user := models.User{
		UserID:      id.UserID,
		Email:       optional(id.Email),
		DisplayName: optional(id.DisplayName),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "updated_at"}),
		}).
		Create(&user).Error
	if err != nil {
		return fmt.Errorf("provision user: %w", err)
	}
	return nil
}

// GetMe describes the caller.
func GetMe(ctx context.Context, db *gorm.DB, id *authz.Identity) (*MeResult, error) {
	var user models.User
	if err := db.WithContext(ctx).Where("user_id = ?", id.UserID).Take(&user).Error; err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}

	return &MeResult{
		UserID:      user.UserID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		GlobalRole:  optional(string(id.GlobalRole)),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
