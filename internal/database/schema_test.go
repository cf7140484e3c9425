package database_test

import (
	"testing"

	"github.com/localnerve/gigcrew/internal/models"
	"github.com/localnerve/gigcrew/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// parentTables lists the tables a table's foreign keys point at.
func parentTables(t *testing.T, db *gorm.DB, table string) []string {
	t.Helper()
	var parents []string
	require.NoError(t, db.Raw(`SELECT "table" FROM pragma_foreign_key_list(?)`, table).Scan(&parents).Error)
	return parents
}

func TestMigratedForeignKeys(t *testing.T) {
	db := testutil.NewDB(t)

	assert.Empty(t, parentTables(t, db, "users"))
	assert.Equal(t, []string{"jobs"}, parentTables(t, db, "job_role_assignments"))
	assert.Equal(t, []string{"jobs"}, parentTables(t, db, "job_notes"))
	assert.Equal(t, []string{"plug_up_sheets"}, parentTables(t, db, "plug_up_rows"))

	testutil.CreateUser(t, db, "crew-1")
	job := testutil.CreateJob(t, db, "J-1")
	testutil.Assign(t, db, job.JobID, "crew-1", "Technician")

	orphan := models.JobRoleAssignment{JobID: "00000000-0000-0000-0000-000000000000", UserID: "crew-1", Role: "Technician"}
	assert.Error(t, db.Create(&orphan).Error)

	require.NoError(t, db.Delete(&models.Job{JobID: job.JobID}).Error)
	var count int64
	require.NoError(t, db.Model(&models.JobRoleAssignment{}).Where("job_id = ?", job.JobID).Count(&count).Error)
	assert.Zero(t, count)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}
