package deploysim

import (
	"context"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/client/state"
)

const (
	testPassed  = "passed"
	testFailed  = "failed"
	testRunning = "running"
	testPending = "pending"
)

// outcomes is what each scripted test finishes with.
var outcomes = []state.TestResult{
	{ID: "1", Name: "Component rendering", Status: testPassed, Duration: 125},
	{ID: "2", Name: "API integration", Status: testPassed, Duration: 89},
	{ID: "3", Name: "User authentication", Status: testFailed, Duration: 203, Message: "Token validation failed"},
	{ID: "4", Name: "Database connections", Status: testPassed, Duration: 67},
}

// RunTests runs the four scripted tests one at a time. Each frame handed to
// sink is a complete snapshot of the suite.
func RunTests(ctx context.Context, sink func([]state.TestResult), step time.Duration) ([]state.TestResult, error) {
	results := make([]state.TestResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = state.TestResult{ID: o.ID, Name: o.Name, Status: testPending}
	}

	for i := range outcomes {
		results[i].Status = testRunning
		sink(snapshot(results))

		if err := wait(ctx, step); err != nil {
			return snapshot(results), err
		}
		results[i] = outcomes[i]
	}
	sink(snapshot(results))
	return snapshot(results), nil
}

func snapshot(r []state.TestResult) []state.TestResult {
	return append([]state.TestResult(nil), r...)
}
