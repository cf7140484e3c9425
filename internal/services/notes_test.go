package services_test

import (
	"net/http"
	"testing"

	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/testutil"
	"github.com/localnerve/gigcrew/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobNotes(t *testing.T) {
	db := testutil.NewDB(t)
	job := testutil.CreateJob(t, db, "J-1")
	testutil.Assign(t, db, job.JobID, "wh-1", "Warehouse")
	testutil.Assign(t, db, job.JobID, "senior-1", "SeniorTechnician")
	testutil.Assign(t, db, job.JobID, "tech-1", "Technician")

	empty, err := services.GetJobNotes(ctx(), db, member("wh-1"), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, "", empty.Text)
	assert.Nil(t, empty.LastEditedByUserID)

	saved, err := services.UpdateJobNotes(ctx(), db, member("senior-1"), job.JobID, services.UpdateNotesInput{Text: strp("Load in 8am")})
	require.NoError(t, err)
	assert.Equal(t, "Load in 8am", saved.Text)
	require.NotNil(t, saved.LastEditedByUserID)
	assert.Equal(t, "senior-1", *saved.LastEditedByUserID)

	again, err := services.GetJobNotes(ctx(), db, member("wh-1"), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Load in 8am", again.Text)

	for _, uid := range []string{"wh-1", "tech-1"} {
		_, err = services.UpdateJobNotes(ctx(), db, member(uid), job.JobID, services.UpdateNotesInput{Text: strp("x")})
		assert.True(t, types.IsKind(err, http.StatusForbidden), uid)
	}

	_, err = services.UpdateJobNotes(ctx(), db, member("senior-1"), job.JobID, services.UpdateNotesInput{})
	assert.True(t, types.IsKind(err, http.StatusBadRequest))
}
