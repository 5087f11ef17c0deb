package cmdexec

import (
	"context"
	"fmt"
	"strings"
)

// MockRunner replays pre-configured results keyed by the joined argv of
// each command. Used by the builder tests instead of real tools.
type MockRunner struct {
	Results map[string]Result
	// OnRun, when set, is invoked for every command before lookup. It
	// can be used to create side-effect files the way real tools do.
	OnRun func(cmd Command)
	// Calls records the joined argv of every executed command in order.
	Calls []string
}

// Run looks up the command in the Results map and returns the matching
// result, or an error for commands the test did not expect.
func (m *MockRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	key := strings.Join(cmd.Args, " ")
	m.Calls = append(m.Calls, key)

	if m.OnRun != nil {
		m.OnRun(cmd)
	}
	result, ok := m.Results[key]
	if !ok {
		return Result{}, fmt.Errorf("cmdexec: unexpected command %q", key)
	}
	if result.ExitCode != 0 {
		return result, &CommandFailure{Cmd: key, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return result, nil
}
