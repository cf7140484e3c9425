package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Audit list bounds.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

// AuditEntry is an event to append to the trail.
type AuditEntry struct {
	JobID       string
	ActorUserID string
	EventType   models.AuditEventType
	Summary     string
	Details     any
}

// AuditEventResult represents the API output format of an audit event
type AuditEventResult struct {
	EventID     string          `json:"eventId"`
	JobID       string          `json:"jobId"`
	ActorUserID string          `json:"actorUserId"`
	EventType   string          `json:"eventType"`
	EventAt     time.Time       `json:"eventAt"`
	Summary     string          `json:"summary"`
	Details     json.RawMessage `json:"details,omitempty"`
}

// ListAuditInput filters the audit listing.
type ListAuditInput struct {
	JobID string
	Limit int
}

// RecordAudit appends an event after the business write has committed. A
// failure is logged and swallowed: the business effect stands either way.
func RecordAudit(ctx context.Context, db *gorm.DB, entry AuditEntry) {
	event := models.AuditEvent{
		JobID:       entry.JobID,
		ActorUserID: entry.ActorUserID,
		EventType:   entry.EventType,
		Summary:     entry.Summary,
	}

	log := logging.L().With(
		zap.String("jobId", entry.JobID),
		zap.String("eventType", string(entry.EventType)))

	if entry.Details != nil {
		details, err := models.NewJSON(entry.Details)
		if err != nil {
			log.Warn("audit details dropped", zap.Error(err))
		} else {
			event.Details = details
		}
	}

	if err := db.WithContext(context.WithoutCancel(ctx)).Create(&event).Error; err != nil {
		log.Warn("audit write failed", zap.Error(err))
	}
}

// ListAuditEvents returns the newest events first. A job filter needs
// ActivityLogRead on that job; the unfiltered trail needs AnyJobVisibility.
func ListAuditEvents(ctx context.Context, db *gorm.DB, id *authz.Identity, input ListAuditInput) ([]AuditEventResult, error) {
	limit := input.Limit
	if limit == 0 {
		limit = DefaultAuditLimit
	}
	if limit < 1 || limit > MaxAuditLimit {
		return nil, types.Validation("limit must be between 1 and 200")
	}

	query := db.WithContext(ctx).Clauses(hints.CommentBefore("select", "audit_list"))
	if input.JobID != "" {
		if _, err := RequireJobPermission(ctx, db, id, input.JobID, authz.ActivityLogRead); err != nil {
			return nil, err
		}
		query = query.Where("job_id = ?", input.JobID)
	} else if !authz.Can(id.GlobalRole, authz.RoleNone, authz.AnyJobVisibility) {
		return nil, types.Forbidden("Missing permission AnyJobVisibility")
	}

	var events []models.AuditEvent
	if err := query.Order("event_at desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	results := make([]AuditEventResult, 0, len(events))
	for _, e := range events {
		r := AuditEventResult{
			EventID:     e.EventID,
			JobID:       e.JobID,
			ActorUserID: e.ActorUserID,
			EventType:   string(e.EventType),
			EventAt:     e.EventAt,
			Summary:     e.Summary,
		}
		if e.Details != nil && len(e.Details.JSON) > 0 {
			r.Details = json.RawMessage(e.Details.JSON)
		}
		results = append(results, r)
	}
	return results, nil
}
