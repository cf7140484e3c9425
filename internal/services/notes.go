package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobNotesResult represents the API output format of a job's notes
type JobNotesResult struct {
	JobID              string     `json:"jobId"`
	Text               string     `json:"text"`
	LastEditedByUserID *string    `json:"lastEditedByUserId,omitempty"`
	LastEditedAt       *time.Time `json:"lastEditedAt,omitempty"`
}

// UpdateNotesInput replaces a job's notes text.
type UpdateNotesInput struct {
	Text *string `json:"text" validate:"required,max=100000"`
}

// GetJobNotes returns a job's notes, creating the empty row on first access.
func GetJobNotes(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) (*JobNotesResult, error) {
	if err := AssertCanViewJob(ctx, db, id, jobID); err != nil {
		return nil, err
	}
	if _, err := findJob(ctx, db, jobID); err != nil {
		return nil, err
	}

	notes := models.JobNotes{JobID: jobID}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "job_id"}}, DoNothing: true}).
		Create(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("ensure job notes: %w", err)
	}

	return readJobNotes(ctx, db, jobID)
}

// UpdateJobNotes upserts the notes text and stamps the editor.
func UpdateJobNotes(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string, input UpdateNotesInput) (*JobNotesResult, error) {
	if _, err := RequireJobPermission(ctx, db, id, jobID, authz.NotesWrite); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if _, err := findJob(ctx, db, jobID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	notes := models.JobNotes{
		JobID:              jobID,
		Text:               *input.Text,
		LastEditedByUserID: &id.UserID,
		LastEditedAt:       &now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "last_edited_by_user_id", "last_edited_at"}),
		}).
		Create(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("update job notes: %w", err)
	}

	return readJobNotes(ctx, db, jobID)
}

func readJobNotes(ctx context.Context, db *gorm.DB, jobID string) (*JobNotesResult, error) {
	var notes models.JobNotes
	if err := db.WithContext(ctx).Where("job_id = ?", jobID).Take(&notes).Error; err != nil {
		return nil, fmt.Errorf("read job notes: %w", err)
	}
	return &JobNotesResult{
		JobID:              notes.JobID,
		Text:               notes.Text,
		LastEditedByUserID: notes.LastEditedByUserID,
		LastEditedAt:       notes.LastEditedAt,
	}, nil
}
