package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/jobs"
)

func TestStore_SaveGetCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	assert.Error(t, s.SaveJob(ctx, &jobs.ExportJob{}))

	job := &jobs.ExportJob{JobID: "j1", Target: jobs.TargetNotion, Status: jobs.JobStatusPending}
	require.NoError(t, s.SaveJob(ctx, job))
	job.Status = jobs.JobStatusFailed

	got, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, got.Status)

	_, err = s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, target := range []jobs.ExportTarget{jobs.TargetBigQuery, jobs.TargetNotion, jobs.TargetBigQuery} {
		require.NoError(t, s.SaveJob(ctx, &jobs.ExportJob{
			JobID:     string(rune('a' + i)),
			Target:    target,
			Status:    jobs.JobStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].JobID)

	bq, err := s.ListJobs(ctx, jobs.JobFilter{Target: jobs.TargetBigQuery, Limit: 1})
	require.NoError(t, err)
	require.Len(t, bq, 1)
	assert.Equal(t, "c", bq[0].JobID)

	none, err := s.ListJobs(ctx, jobs.JobFilter{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.UpdateJobStatus(ctx, "a", jobs.JobStatusFailed, "boom"))
	failed, err := s.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Error)
	assert.ErrorIs(t, s.UpdateJobStatus(ctx, "zzz", jobs.JobStatusFailed, ""), jobs.ErrJobNotFound)
}

func TestStore_RetentionKeepsUnfinishedJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithRetention(2))
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveJob(ctx, &jobs.ExportJob{JobID: "running", Status: jobs.JobStatusRunning, CreatedAt: base}))
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.SaveJob(ctx, &jobs.ExportJob{
			JobID:     id,
			Status:    jobs.JobStatusCompleted,
			CreatedAt: base.Add(time.Duration(i+1) * time.Minute),
		}))
	}

	_, err := s.GetJob(ctx, "old")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
	_, err = s.GetJob(ctx, "running")
	assert.NoError(t, err)

	require.NoError(t, s.UpdateJobStatus(ctx, "running", jobs.JobStatusFailed, "boom"))
	all, err := s.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, j := range all {
		ids = append(ids, j.JobID)
	}
	assert.Equal(t, []string{"new", "mid"}, ids)
}
