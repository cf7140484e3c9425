package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/database"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// JobResult represents the API output format of a job
type JobResult struct {
	JobID     string    `json:"jobId"`
	Reference string    `json:"reference"`
	Name      string    `json:"name"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Location  string    `json:"location"`
	Notes     *string   `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListJobsInput filters the job list.
type ListJobsInput struct {
	Q      string `json:"q" validate:"max=200"`
	Status string `json:"status" validate:"omitempty,oneof=Draft Active Archived"`
}

// CreateJobInput is the body of a job creation.
type CreateJobInput struct {
	Reference string  `json:"reference" validate:"required,max=100"`
	Name      string  `json:"name" validate:"required,max=255"`
	StartDate string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	Location  string  `json:"location" validate:"required,max=255"`
	Notes     *string `json:"notes,omitempty" validate:"omitnil,max=4000"`
	Status    string  `json:"status,omitempty" validate:"omitempty,oneof=Draft Active Archived"`
}

// UpdateJobInput is a partial job update. The reference cannot change.
type UpdateJobInput struct {
	Name      *string                `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	StartDate *string                `json:"startDate,omitempty" validate:"omitnil,datetime=2006-01-02"`
	EndDate   *string                `json:"endDate,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Location  *string                `json:"location,omitempty" validate:"omitnil,min=1,max=255"`
	Notes     types.Nullable[string] `json:"notes"`
	Status    *string                `json:"status,omitempty" validate:"omitnil,oneof=Draft Active Archived"`
}

func newJobResult(j *models.Job) JobResult {
	return JobResult{
		JobID:     j.JobID,
		Reference: j.Reference,
		Name:      j.Name,
		StartDate: j.StartDate,
		EndDate:   j.EndDate,
		Location:  j.Location,
		Notes:     j.Notes,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ListJobs returns the jobs visible to the caller. Only AnyJobVisibility
// sees jobs without an assignment.
func ListJobs(ctx context.Context, db *gorm.DB, id *authz.Identity, input ListJobsInput) ([]JobResult, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	query := db.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "job_list")).
		Model(&models.Job{}).
		Select("jobs.*")

	if !authz.Can(id.GlobalRole, authz.RoleNone, authz.AnyJobVisibility) {
		query = query.Joins("JOIN job_role_assignments ON job_role_assignments.job_id = jobs.job_id AND job_role_assignments.user_id = ?", id.UserID)
	}

	if input.Status != "" {
		query = query.Where("jobs.status = ?", input.Status)
	} else {
		query = query.Where("jobs.status <> ?", models.JobStatusArchived)
	}

	if q := strings.TrimSpace(input.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(jobs.name) LIKE ? OR LOWER(jobs.reference) LIKE ?)", like, like)
	}

	var jobs []models.Job
	if err := query.Order("jobs.start_date desc, jobs.reference asc").Find(&jobs).Error; err != nil {
		return nil, err
	}

	results := make([]JobResult, 0, len(jobs))
	for i := range jobs {
		results = append(results, newJobResult(&jobs[i]))
	}
	return results, nil
}

// GetJob returns one job. Permission is checked before existence.
func GetJob(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) (*JobResult, error) {
	if err := AssertCanViewJob(ctx, db, id, jobID); err != nil {
		return nil, err
	}
	job, err := findJob(ctx, db, jobID)
	if err != nil {
		return nil, err
	}
	result := newJobResult(job)
	return &result, nil
}

// CreateJob creates a job. Only global roles may create jobs since the
// caller cannot hold an assignment on a job that does not exist yet.
func CreateJob(ctx context.Context, db *gorm.DB, id *authz.Identity, input CreateJobInput) (*JobResult, error) {
	if !authz.Can(id.GlobalRole, authz.RoleNone, authz.JobWrite) {
		return nil, types.Forbidden("Missing permission JobWrite")
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.EndDate < input.StartDate {
		return nil, types.Validation("endDate must not be before startDate")
	}

	status := input.Status
	if status == "" {
		status = models.JobStatusDraft
	}

	job := models.Job{
		Reference: strings.TrimSpace(input.Reference),
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Location:  input.Location,
		Notes:     input.Notes,
		Status:    status,
	}
	if err := db.WithContext(ctx).Create(&job).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, types.Conflict("Job reference already exists")
		}
		return nil, fmt.Errorf("create job: %w", err)
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       job.JobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditJobCreated,
		Summary:     "Job created: " + job.Reference,
	})

	result := newJobResult(&job)
	return &result, nil
}

// UpdateJob applies a partial update. An empty patch returns the job as is.
func UpdateJob(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string, input UpdateJobInput) (*JobResult, error) {
	if _, err := RequireJobPermission(ctx, db, id, jobID, authz.JobWrite); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.Notes.Value != nil && len(*input.Notes.Value) > 4000 {
		return nil, types.Validation("notes failed max=4000")
	}

	job, err := findJob(ctx, db, jobID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
		job.Name = *input.Name
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
		job.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
		job.EndDate = *input.EndDate
	}
	if input.Location != nil {
		updates["location"] = *input.Location
		job.Location = *input.Location
	}
	if input.Notes.Set {
		updates["notes"] = input.Notes.Value
		job.Notes = input.Notes.Value
	}
	if input.Status != nil {
		updates["status"] = *input.Status
		job.Status = *input.Status
	}

	if len(updates) == 0 {
		result := newJobResult(job)
		return &result, nil
	}
	if job.EndDate < job.StartDate {
		return nil, types.Validation("endDate must not be before startDate")
	}

	if err := db.WithContext(ctx).Model(&models.Job{}).Where("job_id = ?", jobID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	RecordAudit(ctx, db, AuditEntry{
		JobID:       jobID,
		ActorUserID: id.UserID,
		EventType:   models.AuditJobUpdated,
		Summary:     "Job updated: " + job.Reference,
	})

	updated, err := findJob(ctx, db, jobID)
	if err != nil {
		return nil, err
	}
	result := newJobResult(updated)
	return &result, nil
}
