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

func TestListAuditEvents(t *testing.T) {
	db := testutil.NewDB(t)
	first := testutil.CreateJob(t, db, "J-1")
	second := testutil.CreateJob(t, db, "J-2")
	testutil.Assign(t, db, first.JobID, "senior-1", "SeniorTechnician")
	testutil.Assign(t, db, first.JobID, "tech-1", "Technician")

	services.RecordAudit(ctx(), db, services.AuditEntry{
		JobID:       first.JobID,
		ActorUserID: "admin-1",
		EventType:   models.AuditJobUpdated,
		Summary:     "Job updated",
		Details:     map[string]any{"fields": []string{"name"}},
	})
	services.RecordAudit(ctx(), db, services.AuditEntry{
		JobID:       first.JobID,
		ActorUserID: "admin-1",
		EventType:   models.AuditPlugUpEdited,
		Summary:     "Plug-up updated (0 rows)",
	})
	services.RecordAudit(ctx(), db, services.AuditEntry{
		JobID:       second.JobID,
		ActorUserID: "pm-1",
		EventType:   models.AuditJobUpdated,
		Summary:     "Job updated",
	})

	events, err := services.ListAuditEvents(ctx(), db, member("senior-1"), services.ListAuditInput{JobID: first.JobID})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Plug-up updated (0 rows)", events[0].Summary)
	assert.Equal(t, "PlugUpEdited", events[0].EventType)
	assert.Empty(t, events[0].Details)
	assert.JSONEq(t, `{"fields":["name"]}`, string(events[1].Details))

	_, err = services.ListAuditEvents(ctx(), db, member("tech-1"), services.ListAuditInput{JobID: first.JobID})
	assert.True(t, types.IsKind(err, http.StatusForbidden))

	_, err = services.ListAuditEvents(ctx(), db, member("senior-1"), services.ListAuditInput{})
	assert.True(t, types.IsKind(err, http.StatusForbidden))

	all, err := services.ListAuditEvents(ctx(), db, pm, services.ListAuditInput{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := services.ListAuditEvents(ctx(), db, admin, services.ListAuditInput{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.JobID, limited[0].JobID)
}

func TestListAuditEventsLimitBounds(t *testing.T) {
	db := testutil.NewDB(t)

	for _, limit := range []int{-1, services.MaxAuditLimit + 1} {
		_, err := services.ListAuditEvents(ctx(), db, admin, services.ListAuditInput{Limit: limit})
		assert.True(t, types.IsKind(err, http.StatusBadRequest), "limit %d", limit)
	}

	events, err := services.ListAuditEvents(ctx(), db, admin, services.ListAuditInput{Limit: services.MaxAuditLimit})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecordAuditDropsUnencodableDetails(t *testing.T) {
	db := testutil.NewDB(t)
	job := testutil.CreateJob(t, db, "J-1")

	services.RecordAudit(ctx(), db, services.AuditEntry{
		JobID:       job.JobID,
		ActorUserID: "admin-1",
		EventType:   models.AuditJobCreated,
		Summary:     "Job created",
		Details:     map[string]any{"bad": make(chan int)},
	})

	events, err := services.ListAuditEvents(ctx(), db, admin, services.ListAuditInput{JobID: job.JobID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Details)
}
