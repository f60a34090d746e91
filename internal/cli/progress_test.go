package cli

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/wdtable/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func running() jobState {
	return jobState{ID: "abc12345", Lang: "en", Status: "running", Progress: 1, Total: 3}
}

func TestProgressModelCompleted(t *testing.T) {
	m := newProgressModel(nil, running(), false)

	done := running()
	done.Status = string(service.JobStatusCompleted)
	done.Progress, done.Elements, done.Nuclides = 3, 118, 3300

	next, cmd := m.Update(jobUpdateMsg{job: done})
	require.NotNil(t, cmd)
	pm := next.(progressModel)
	assert.True(t, pm.done)
	assert.NoError(t, pm.err)

	view := pm.renderContent()
	assert.Contains(t, view, "Completed")
	assert.Contains(t, view, "118")
	assert.Contains(t, view, "3300")
}

func TestProgressModelFailed(t *testing.T) {
	m := newProgressModel(nil, running(), true)

	failed := running()
	failed.Status = string(service.JobStatusFailed)
	failed.Error = "fetch nuclides: timeout"

	next, _ := m.Update(jobUpdateMsg{job: failed})
	pm := next.(progressModel)
	assert.True(t, pm.done)
	assert.EqualError(t, pm.err, "fetch nuclides: timeout")
	assert.Contains(t, pm.renderContent(), "Job failed")
}

func TestProgressModelFetchError(t *testing.T) {
	m := newProgressModel(nil, running(), true)

	next, _ := m.Update(jobUpdateMsg{err: errors.New("connection refused")})
	pm := next.(progressModel)
	assert.True(t, pm.done)
	assert.ErrorContains(t, pm.err, "connection refused")
}

func TestProgressModelRunning(t *testing.T) {
	m := newProgressModel(nil, running(), true)

	next, cmd := m.Update(jobUpdateMsg{job: running()})
	assert.NotNil(t, cmd, "keeps polling")
	pm := next.(progressModel)
	assert.False(t, pm.done)

	view := pm.renderContent()
	assert.Contains(t, view, "[running]")
	assert.Contains(t, view, "1/3 steps")
	assert.Contains(t, view, "continue in background")

	local := newProgressModel(nil, running(), false)
	assert.Contains(t, local.renderContent(), "abort")
}

func TestProgressModelQuit(t *testing.T) {
	tests := []struct {
		name   string
		remote bool
		want   string
	}{
		{"remote", true, "continues in background"},
		{"local", false, "aborted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newProgressModel(nil, running(), tt.remote)

			next, _ := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
			pm := next.(progressModel)
			assert.True(t, pm.quitting)
			assert.Contains(t, pm.renderContent(), tt.want)
		})
	}
}

func TestLocalJob(t *testing.T) {
	jobs := service.NewJobManager(staticSource{}, staticSource{}, nopSink{})
	job, err := jobs.Refresh(context.Background(), "de")
	require.NoError(t, err)

	state, err := localJob(jobs.GetJob(job.ID))(context.Background())
	require.NoError(t, err)
	assert.True(t, state.done())
	assert.Equal(t, "de", state.Lang)
	assert.Equal(t, 1, state.Elements)
}
