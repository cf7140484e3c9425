package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEventType is the closed set of audited actions.
type AuditEventType string

const (
	AuditJobCreated        AuditEventType = "JobCreated"
	AuditJobUpdated        AuditEventType = "JobUpdated"
	AuditAssignmentChanged AuditEventType = "AssignmentChanged"
	AuditFileUploaded      AuditEventType = "FileUploaded"
	AuditFileDeleted       AuditEventType = "FileDeleted"
	AuditPlugUpEdited      AuditEventType = "PlugUpEdited"
	AuditPlugUpRowDeleted  AuditEventType = "PlugUpRowDeleted"
	AuditPlugUpExported    AuditEventType = "PlugUpExported"
)

// AuditEvent is an append only record. It is not tied to the job by a foreign
// key so the trail outlives the job.
type AuditEvent struct {
	EventID     string         `gorm:"primaryKey;type:char(36)"`
	JobID       string         `gorm:"type:char(36);not null;index"`
	ActorUserID string         `gorm:"size:255;not null"`
	EventType   AuditEventType `gorm:"size:32;not null"`
	EventAt     time.Time      `gorm:"not null;index"`
	Summary     string         `gorm:"size:1000;not null"`
	Details     *JSON
}

// TableName overrides the table name for AuditEvent
func (AuditEvent) TableName() string {
	return "audit_events"
}

// BeforeCreate assigns the event id and time.
func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.EventAt.IsZero() {
		e.EventAt = time.Now().UTC()
	}
	return nil
}
