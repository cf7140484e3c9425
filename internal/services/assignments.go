package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/database"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentResult represents the API output format of an assignment
type AssignmentResult struct {
	AssignmentID    string    `json:"assignmentId"`
	JobID           string    `json:"jobId"`
	UserID          string    `json:"userId"`
	Role            string    `json:"role"`
	AssignmentNotes *string   `json:"assignmentNotes,omitempty"`
	Email           *string   `json:"email,omitempty"`
	DisplayName     *string   `json:"displayName,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateAssignmentInput assigns a user to a job.
type CreateAssignmentInput struct {
	UserID          string  `json:"userId" validate:"required,max=255"`
	Role            string  `json:"role" validate:"required,oneof=Admin PM SeniorTechnician Technician Warehouse"`
	AssignmentNotes *string `json:"assignmentNotes,omitempty" validate:"omitnil,max=2000"`
}

// UpdateAssignmentInput changes an assignment's role or notes.
type UpdateAssignmentInput struct {
	Role            *string                `json:"role,omitempty" validate:"omitnil,oneof=Admin PM SeniorTechnician Technician Warehouse"`
	AssignmentNotes types.Nullable[string] `json:"assignmentNotes"`
}

func newAssignmentResult(a *models.JobRoleAssignment, users map[string]models.User) AssignmentResult {
	r := AssignmentResult{
		AssignmentID:    a.AssignmentID,
		JobID:           a.JobID,
		UserID:          a.UserID,
		Role:            a.Role,
		AssignmentNotes: a.AssignmentNotes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if u, ok := users[a.UserID]; ok {
		r.Email = u.Email
		r.DisplayName = u.DisplayName
	}
	return r
}

// loadAssignees fetches the user rows behind a set of assignments, keyed by
// user id.
func loadAssignees(ctx context.Context, db *gorm.DB, assignments []models.JobRoleAssignment) (map[string]models.User, error) {
	users := make(map[string]models.User, len(assignments))
	if len(assignments) == 0 {
		return users, nil
	}
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.UserID)
	}
	var rows []models.User
	if err := db.WithContext(ctx).Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load assignees: %w", err)
	}
	for _, u := range rows {
		users[u.UserID] = u
	}
	return users, nil
}

// ListAssignments returns a job's crew in assignment order.
func ListAssignments(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) ([]AssignmentResult, error) {
	if err := AssertCanViewJob(ctx, db, id, jobID); err != nil {
		return nil, err
	}

	var assignments []models.JobRoleAssignment
	err := db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at asc, assignment_id asc").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	users, err := loadAssignees(ctx, db, assignments)
	if err != nil {
		return nil, err
	}

	results := make([]AssignmentResult, 0, len(assignments))
	for i := range assignments {
		results = append(results, newAssignmentResult(&assignments[i], users))
	}
	return results, nil
}

// CreateAssignment adds a user to a job's crew. A user who has never signed
// in gets a bare user row so the assignment can reference it.
func CreateAssignment(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string, input CreateAssignmentInput) (*AssignmentResult, error) {
	if _, err := RequireJobPermission(ctx, db, id, jobID, authz.AssignmentsWrite); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if _, err := findJob(ctx, db, jobID); err != nil {
		return nil, err
	}

	assignment := models.JobRoleAssignment{
		JobID:           jobID,
		UserID:          input.UserID,
		Role:            input.Role,
		AssignmentNotes: input.AssignmentNotes,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := models.User{UserID: input.UserID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error; err != nil {
			return err
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, types.Conflict("User is already assigned to this job")
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditAssignmentChanged,
		Summary:     fmt.Sprintf("Assignment added: %s (%s)", input.UserID, input.Role),
	})

	return findAssignment(ctx, db, jobID, assignment.AssignmentID)
}

// UpdateAssignment changes the role and/or notes of an assignment.
func UpdateAssignment(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID, assignmentID string, input UpdateAssignmentInput) (*AssignmentResult, error) {
	if _, err := RequireJobPermission(ctx, db, id, jobID, authz.AssignmentsWrite); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	existing, err := findAssignment(ctx, db, jobID, assignmentID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.AssignmentNotes.Set {
		updates["assignment_notes"] = input.AssignmentNotes.Value
	}
	if len(updates) == 0 {
		return existing, nil
	}

	err = db.WithContext(ctx).
		Model(&models.JobRoleAssignment{}).
		Where("job_id = ? AND assignment_id = ?", jobID, assignmentID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditAssignmentChanged,
		Summary:     "Assignment updated: " + existing.UserID,
	})

	return findAssignment(ctx, db, jobID, assignmentID)
}

// DeleteAssignment removes a user from a job's crew.
func DeleteAssignment(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID, assignmentID string) error {
	if _, err := RequireJobPermission(ctx, db, id, jobID, authz.AssignmentsWrite); err != nil {
		return err
	}

	existing, err := findAssignment(ctx, db, jobID, assignmentID)
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).
		Where("job_id = ? AND assignment_id = ?", jobID, assignmentID).
		Delete(&models.JobRoleAssignment{})
	if result.Error != nil {
		return fmt.Errorf("delete assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NotFound("Assignment not found")
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditAssignmentChanged,
		Summary:     "Assignment removed: " + existing.UserID,
	})
	return nil
}

func findAssignment(ctx context.Context, db *gorm.DB, jobID, assignmentID string) (*AssignmentResult, error) {
	var a models.JobRoleAssignment
	err := db.WithContext(ctx).
		Where("job_id = ? AND assignment_id = ?", jobID, assignmentID).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("Assignment not found")
	}
	if err != nil {
		return nil, err
	}
	users, err := loadAssignees(ctx, db, []models.JobRoleAssignment{a})
	if err != nil {
		return nil, err
	}
	result := newAssignmentResult(&a, users)
	return &result, nil
}
