package services_test

import (
	"net/http"
	"testing"

	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/testutil"
	"github.com/localnerve/gigcrew/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobRefs(jobs []services.JobResult) []string {
	refs := make([]string, len(jobs))
	for i, j := range jobs {
		refs[i] = j.Reference
	}
	return refs
}

func TestCreateJob(t *testing.T) {
	db := testutil.NewDB(t)
	input := services.CreateJobInput{
		Reference: "J-100",
		Name:      "Festival",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-03",
		Location:  "Park",
	}

	job, err := services.CreateJob(ctx(), db, pm, input)
	require.NoError(t, err)
	assert.NotEmpty(t, job.JobID)
	assert.Equal(t, models.JobStatusDraft, job.Status)
	assert.Equal(t, []string{"Job created: J-100"}, auditSummaries(t, db, job.JobID))

	t.Run("duplicate reference", func(t *testing.T) {
		_, err := services.CreateJob(ctx(), db, admin, input)
		var ce *types.CustomError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, http.StatusConflict, ce.Code)
		assert.Equal(t, "Job reference already exists", ce.Message)
	})

	t.Run("assignment roles cannot create", func(t *testing.T) {
		testutil.Assign(t, db, job.JobID, "lead-1", "Admin")
		_, err := services.CreateJob(ctx(), db, member("lead-1"), services.CreateJobInput{
			Reference: "J-101", Name: "x", StartDate: "2026-06-01", EndDate: "2026-06-01", Location: "x",
		})
		assert.True(t, types.IsKind(err, http.StatusForbidden))
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := services.CreateJob(ctx(), db, admin, services.CreateJobInput{
			Reference: "J-102", Name: "x", StartDate: "2026-06-02", EndDate: "2026-06-01", Location: "x",
		})
		assert.True(t, types.IsKind(err, http.StatusBadRequest))
	})

	t.Run("bad date format", func(t *testing.T) {
		_, err := services.CreateJob(ctx(), db, admin, services.CreateJobInput{
			Reference: "J-103", Name: "x", StartDate: "06/01/2026", EndDate: "2026-06-01", Location: "x",
		})
		assert.True(t, types.IsKind(err, http.StatusBadRequest))
	})
}

func TestListJobsVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateJob(t, db, "A-1")
	b := testutil.CreateJob(t, db, "B-1")
	archived := testutil.CreateJob(t, db, "C-1")
	require.NoError(t, db.Model(archived).Update("status", models.JobStatusArchived).Error)

	testutil.Assign(t, db, a.JobID, "tech-1", "Technician")
	testutil.Assign(t, db, archived.JobID, "tech-1", "Technician")

	all, err := services.ListJobs(ctx(), db, pm, services.ListJobsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "B-1"}, jobRefs(all))

	mine, err := services.ListJobs(ctx(), db, member("tech-1"), services.ListJobsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1"}, jobRefs(mine))

	mineArchived, err := services.ListJobs(ctx(), db, member("tech-1"), services.ListJobsInput{Status: models.JobStatusArchived})
	require.NoError(t, err)
	assert.Equal(t, []string{"C-1"}, jobRefs(mineArchived))

	none, err := services.ListJobs(ctx(), db, member("stranger"), services.ListJobsInput{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_ = b
}

func TestListJobsSearchAndOrder(t *testing.T) {
	db := testutil.NewDB(t)
	early := testutil.CreateJob(t, db, "J-2")
	late := testutil.CreateJob(t, db, "J-1")
	require.NoError(t, db.Model(late).Updates(map[string]any{"start_date": "2026-05-01", "end_date": "2026-05-02", "name": "Opera Night"}).Error)
	_ = early

	jobs, err := services.ListJobs(ctx(), db, admin, services.ListJobsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"J-1", "J-2"}, jobRefs(jobs))

	found, err := services.ListJobs(ctx(), db, admin, services.ListJobsInput{Q: "opera"})
	require.NoError(t, err)
	assert.Equal(t, []string{"J-1"}, jobRefs(found))

	byRef, err := services.ListJobs(ctx(), db, admin, services.ListJobsInput{Q: "j-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"J-2"}, jobRefs(byRef))

	_, err = services.ListJobs(ctx(), db, admin, services.ListJobsInput{Status: "Cancelled"})
	assert.True(t, types.IsKind(err, http.StatusBadRequest))
}

func TestGetJob(t *testing.T) {
	db := testutil.NewDB(t)
	job := testutil.CreateJob(t, db, "J-1")
	testutil.Assign(t, db, job.JobID, "wh-1", "Warehouse")

	got, err := services.GetJob(ctx(), db, member("wh-1"), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, "J-1", got.Reference)

	_, err = services.GetJob(ctx(), db, member("stranger"), job.JobID)
	assert.True(t, types.IsKind(err, http.StatusForbidden))

	_, err = services.GetJob(ctx(), db, admin, "missing")
	assert.True(t, types.IsKind(err, http.StatusNotFound))
}

func TestUpdateJob(t *testing.T) {
	db := testutil.NewDB(t)
	job := testutil.CreateJob(t, db, "J-1")
	testutil.Assign(t, db, job.JobID, "lead-1", "PM")
	testutil.Assign(t, db, job.JobID, "tech-1", "Technician")

	updated, err := services.UpdateJob(ctx(), db, member("lead-1"), job.JobID, services.UpdateJobInput{
		Name:   strp("Renamed"),
		Notes:  types.NullableOf("bring ladders"),
		Status: strp(models.JobStatusArchived),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.JobStatusArchived, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "bring ladders", *updated.Notes)
	assert.Equal(t, "J-1", updated.Reference)

	cleared, err := services.UpdateJob(ctx(), db, member("lead-1"), job.JobID, services.UpdateJobInput{
		Notes: types.Nullable[string]{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Notes)

	same, err := services.UpdateJob(ctx(), db, member("lead-1"), job.JobID, services.UpdateJobInput{})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", same.Name)
	assert.Equal(t, []string{"Job updated: J-1", "Job updated: J-1"}, auditSummaries(t, db, job.JobID))

	_, err = services.UpdateJob(ctx(), db, member("tech-1"), job.JobID, services.UpdateJobInput{Name: strp("x")})
	assert.True(t, types.IsKind(err, http.StatusForbidden))

	_, err = services.UpdateJob(ctx(), db, member("lead-1"), job.JobID, services.UpdateJobInput{EndDate: strp("2025-12-31")})
	assert.True(t, types.IsKind(err, http.StatusBadRequest))

	_, err = services.UpdateJob(ctx(), db, member("lead-1"), job.JobID, services.UpdateJobInput{Name: strp("")})
	assert.True(t, types.IsKind(err, http.StatusBadRequest))
}
