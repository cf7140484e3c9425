package devdb

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/database"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg, err := StartPostgres(ctx, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	cfg := &config.Config{}
	pg.Apply(cfg)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))

	admin := &authz.Identity{UserID: "admin-1", GlobalRole: authz.GlobalAdmin}
	require.NoError(t, services.ProvisionUser(ctx, db, admin))

	job, err := services.CreateJob(ctx, db, admin, services.CreateJobInput{
		Reference: "J-100",
		Name:      "Arena Show",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-02",
		Location:  "Arena",
	})
	require.NoError(t, err)

	t.Run("duplicate reference conflicts", func(t *testing.T) {
		_, err := services.CreateJob(ctx, db, admin, services.CreateJobInput{
			Reference: "J-100",
			Name:      "Again",
			StartDate: "2026-03-01",
			EndDate:   "2026-03-02",
			Location:  "Arena",
		})
		assert.True(t, types.IsKind(err, 409))
	})

	t.Run("plug-up replace is atomic", func(t *testing.T) {
		label := "Ch 1"
		idx0, idx1 := 0, 1
		sheet, err := services.ReplacePlugUpSheet(ctx, db, admin, job.JobID, services.ReplacePlugUpInput{
			Rows: types.Rows[services.PlugUpRowInput]{
				{OrderIndex: &idx1, Label: &label},
				{OrderIndex: &idx0},
			},
		})
		require.NoError(t, err)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, 0, sheet.Rows[0].OrderIndex)
		assert.Equal(t, uint64(1), sheet.Version)

		stale := types.Version(0)
		_, err = services.ReplacePlugUpSheet(ctx, db, admin, job.JobID, services.ReplacePlugUpInput{
			Rows:        types.Rows[services.PlugUpRowInput]{},
			BaseVersion: &stale,
		})
		assert.True(t, types.IsKind(err, 409))

		again, err := services.GetPlugUpSheet(ctx, db, admin, job.JobID)
		require.NoError(t, err)
		assert.Len(t, again.Rows, 2)
	})
}
