package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job statuses.
const (
	JobStatusDraft    = "Draft"
	JobStatusActive   = "Active"
	JobStatusArchived = "Archived"
)

// Job is a gig. Dates are calendar dates stored as YYYY-MM-DD.
type Job struct {
	JobID     string  `gorm:"primaryKey;type:char(36)"`
	Reference string  `gorm:"uniqueIndex;size:100;not null"`
	Name      string  `gorm:"size:255;not null"`
	StartDate string  `gorm:"size:10;not null;index"`
	EndDate   string  `gorm:"size:10;not null"`
	Location  string  `gorm:"size:255;not null"`
	Notes     *string `gorm:"size:4000"`
	Status    string  `gorm:"size:16;not null;default:Draft;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Assignments []JobRoleAssignment `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Files       []JobFile           `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	JobNotes    *JobNotes           `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	PlugUpSheet *PlugUpSheet        `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Job
func (Job) TableName() string {
	return "jobs"
}

// BeforeCreate assigns a job id when the caller did not.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.JobID == "" {
		j.JobID = uuid.NewString()
	}
	return nil
}

// JobRoleAssignment links a user to a job with exactly one role.
type JobRoleAssignment struct {
	AssignmentID    string  `gorm:"primaryKey;type:char(36)"`
	JobID           string  `gorm:"type:char(36);not null;uniqueIndex:idx_job_user"`
	UserID          string  `gorm:"size:255;not null;uniqueIndex:idx_job_user;index"`
	Role            string  `gorm:"size:32;not null"`
	AssignmentNotes *string `gorm:"size:2000"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the table name for JobRoleAssignment
func (JobRoleAssignment) TableName() string {
	return "job_role_assignments"
}

// BeforeCreate assigns an assignment id when the caller did not.
func (a *JobRoleAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.AssignmentID == "" {
		a.AssignmentID = uuid.NewString()
	}
	return nil
}

// JobNotes holds the free text notes of a job, one row per job.
type JobNotes struct {
	JobID              string  `gorm:"primaryKey;type:char(36)"`
	Text               string  `gorm:"not null"`
	LastEditedByUserID *string `gorm:"size:255"`
	LastEditedAt       *time.Time
}

// TableName overrides the table name for JobNotes
func (JobNotes) TableName() string {
	return "job_notes"
}

// File areas.
const (
	FileAreaShared   = "Shared"
	FileAreaInternal = "Internal"
)

// JobFile is the metadata of an uploaded object. Deleting a file is a soft
// delete; gorm filters deleted rows from every query.
type JobFile struct {
	FileID           string         `gorm:"primaryKey;type:char(36)"`
	JobID            string         `gorm:"type:char(36);not null;index"`
	Area             string         `gorm:"size:16;not null"`
	Category         string         `gorm:"size:64;not null"`
	OriginalFileName string         `gorm:"size:512;not null"`
	MimeType         string         `gorm:"size:255;not null"`
	SizeBytes        int64          `gorm:"not null"`
	StorageObjectKey string         `gorm:"size:1024;not null"`
	UploadedByUserID string         `gorm:"size:255;not null"`
	UploadedAt       time.Time      `gorm:"not null;index"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name for JobFile
func (JobFile) TableName() string {
	return "job_files"
}

// BeforeCreate assigns a file id and upload time when the caller did not.
func (f *JobFile) BeforeCreate(tx *gorm.DB) error {
	if f.FileID == "" {
		f.FileID = uuid.NewString()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	return nil
}
