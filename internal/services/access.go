package services

import (
	"context"
	"errors"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/types"
	"gorm.io/gorm"
)

// JobAccess is a caller's resolved standing on one job. It is built per
// request and never cached.
type JobAccess struct {
	Identity *authz.Identity
	JobID    string
	Role     authz.AssignmentRole
}

// Can reports whether the caller holds perm on the job.
func (a *JobAccess) Can(perm authz.Permission) bool {
	return authz.Can(a.Identity.GlobalRole, a.Role, perm)
}

// Require returns a forbidden error when the caller lacks perm.
func (a *JobAccess) Require(perm authz.Permission) error {
	if !a.Can(perm) {
		return types.Forbidden("Missing permission " + string(perm) + " for job")
	}
	return nil
}

// ResolveAssignmentRole looks up the caller's role on a job. No assignment,
// or a stored role outside the known five, resolves to RoleNone.
func ResolveAssignmentRole(ctx context.Context, db *gorm.DB, jobID, userID string) (authz.AssignmentRole, error) {
	var assignment models.JobRoleAssignment
	result := db.WithContext(ctx).
		Select("role").
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Limit(1).
		Find(&assignment)
	if result.Error != nil {
		return authz.RoleNone, result.Error
	}
	if result.RowsAffected == 0 {
		return authz.RoleNone, nil
	}

	role, _ := authz.ParseAssignmentRole(assignment.Role)
	return role, nil
}

// LoadJobAccess resolves the caller's standing on jobID. Privileged global
// roles skip the assignment lookup entirely.
func LoadJobAccess(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) (*JobAccess, error) {
	access := &JobAccess{Identity: id, JobID: jobID}
	if id.GlobalRole.Privileged() {
		return access, nil
	}

	role, err := ResolveAssignmentRole(ctx, db, jobID, id.UserID)
	if err != nil {
		return nil, err
	}
	access.Role = role
	return access, nil
}

// RequireJobPermission loads the caller's access and fails fast without perm.
func RequireJobPermission(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string, perm authz.Permission) (*JobAccess, error) {
	access, err := LoadJobAccess(ctx, db, id, jobID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(perm); err != nil {
		return nil, err
	}
	return access, nil
}

// AssertCanViewJob fails with a forbidden error unless the caller may read the job.
func AssertCanViewJob(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) error {
	_, err := RequireJobPermission(ctx, db, id, jobID, authz.JobRead)
	return err
}

// AssertCanEditPlugUp fails with a forbidden error unless the caller may
// write the job's plug-up sheet.
func AssertCanEditPlugUp(ctx context.Context, db *gorm.DB, id *authz.Identity, jobID string) error {
	_, err := RequireJobPermission(ctx, db, id, jobID, authz.PlugUpWrite)
	return err
}

// findJob loads a job or returns a not found error.
func findJob(ctx context.Context, db *gorm.DB, jobID string) (*models.Job, error) {
	var job models.Job
	err := db.WithContext(ctx).Where("job_id = ?", jobID).Take(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("Job not found")
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}
