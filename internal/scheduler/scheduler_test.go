package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/jobs"
)

func TestNewScheduler(t *testing.T) {
	t.Run("RegistersRefreshJob", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{RefreshLateFees: "0 0 1 * * *"}}
		s, err := NewScheduler(jobs.NewJobRunner(nil, cfg))
		require.NoError(t, err)
		assert.True(t, s.IsRunning())

		s.Start()
		defer s.Stop()
		next := s.NextRun()
		assert.False(t, next.IsZero())
		assert.Equal(t, 1, next.UTC().Hour())
	})

	t.Run("RejectsBadSchedule", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{RefreshLateFees: "every night"}}
		_, err := NewScheduler(jobs.NewJobRunner(nil, cfg))
		assert.Error(t, err)
	})
}
