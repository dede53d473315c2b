// Package deploysim plays the scripted deployment and test runs shown by the
// dashboard. Nothing here talks to a real pipeline.
package deploysim

import (
	"context"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/client/state"
)

type stage struct {
	status   string
	progress int
	log      string
}

var deployStages = []stage{
	{state.DeployBuilding, 10, "Starting build process..."},
	{state.DeployBuilding, 30, "Installing dependencies..."},
	{state.DeployBuilding, 60, "Building application..."},
	{state.DeployTesting, 80, "Running tests..."},
	{state.DeployDeploying, 95, "Deploying to production..."},
	{state.DeploySuccess, 100, "Deployment successful!"},
}

type options struct {
	now    func() time.Time
	failAt string
}

type Option func(*options)

// WithClock sets the time recorded as LastDeployed.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// FailDuring ends the run in failed when it reaches the given stage.
func FailDuring(status string) Option {
	return func(o *options) { o.failAt = status }
}

// Deploy emits each stage to sink, one step apart, and returns the last
// status emitted. A cancelled ctx stops the run where it is.
func Deploy(ctx context.Context, sink func(state.DeploymentStatus), step time.Duration, opts ...Option) (state.DeploymentStatus, error) {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}

	var (
		logs []string
		last state.DeploymentStatus
	)
	for i, s := range deployStages {
		if i > 0 {
			if err := wait(ctx, step); err != nil {
				return last, err
			}
		}

		if o.failAt != "" && s.status == o.failAt {
			logs = append(logs, "Deployment failed during "+s.status)
			last = state.DeploymentStatus{Status: state.DeployFailed, Progress: s.progress, Logs: clone(logs)}
			sink(last)
			return last, nil
		}

		logs = append(logs, s.log)
		last = state.DeploymentStatus{Status: s.status, Progress: s.progress, Logs: clone(logs)}
		if s.status == state.DeploySuccess {
			t := o.now().UTC()
			last.LastDeployed = &t
		}
		sink(last)
	}
	return last, nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
