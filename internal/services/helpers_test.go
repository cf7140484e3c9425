package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	admin = &authz.Identity{UserID: "admin-1", GlobalRole: authz.GlobalAdmin}
	pm    = &authz.Identity{UserID: "pm-1", GlobalRole: authz.GlobalPM}
)

func member(userID string) *authz.Identity {
	return &authz.Identity{UserID: userID}
}

func intp(i int) *int { return &i }

func strp(s string) *string { return &s }

func auditSummaries(t *testing.T, db *gorm.DB, jobID string) []string {
	t.Helper()
	var events []models.AuditEvent
	require.NoError(t, db.Where("job_id = ?", jobID).Order("event_at asc").Find(&events).Error)
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Summary
	}
	return out
}

func ctx() context.Context { return context.Background() }
