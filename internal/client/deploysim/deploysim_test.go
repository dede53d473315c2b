package deploysim

import (
	"context"
	"testing"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/client/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploy_Timeline(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var seen []state.DeploymentStatus

	last, err := Deploy(context.Background(), func(s state.DeploymentStatus) { seen = append(seen, s) },
		time.Millisecond, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	require.Len(t, seen, 6)
	var progress []int
	var statuses []string
	for _, s := range seen {
		progress = append(progress, s.Progress)
		statuses = append(statuses, s.Status)
	}
	assert.Equal(t, []int{10, 30, 60, 80, 95, 100}, progress)
	assert.Equal(t, []string{"building", "building", "building", "testing", "deploying", "success"}, statuses)

	assert.Equal(t, []string{
		"Starting build process...",
		"Installing dependencies...",
		"Building application...",
		"Running tests...",
		"Deploying to production...",
		"Deployment successful!",
	}, last.Logs)
	require.NotNil(t, last.LastDeployed)
	assert.Equal(t, fixed, *last.LastDeployed)
	assert.Nil(t, seen[4].LastDeployed)
	assert.Len(t, seen[0].Logs, 1, "earlier frames are not mutated by later ones")
}

func TestDeploy_FailureHook(t *testing.T) {
	var seen []state.DeploymentStatus
	last, err := Deploy(context.Background(), func(s state.DeploymentStatus) { seen = append(seen, s) },
		time.Millisecond, FailDuring(state.DeployTesting))
	require.NoError(t, err)

	assert.Equal(t, state.DeployFailed, last.Status)
	assert.Equal(t, 80, last.Progress)
	assert.Nil(t, last.LastDeployed)
	assert.Len(t, seen, 4)
}

func TestDeploy_CancelKeepsLastState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var seen []state.DeploymentStatus
	sink := func(s state.DeploymentStatus) {
		seen = append(seen, s)
		if len(seen) == 1 {
			cancel()
		}
	}

	last, err := Deploy(ctx, sink, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, state.DeployBuilding, last.Status)
	assert.Equal(t, 10, last.Progress)
	assert.Len(t, seen, 1)
}

func TestRunTests(t *testing.T) {
	var frames [][]state.TestResult
	final, err := RunTests(context.Background(), func(r []state.TestResult) { frames = append(frames, r) }, time.Millisecond)
	require.NoError(t, err)

	require.Len(t, frames, 5)
	assert.Equal(t, "running", frames[0][0].Status)
	assert.Equal(t, "pending", frames[0][3].Status)

	require.Len(t, final, 4)
	failed := 0
	for _, r := range final {
		if r.Status == "failed" {
			failed++
			assert.Equal(t, "User authentication", r.Name)
			assert.Equal(t, "Token validation failed", r.Message)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, final, frames[4])
}
