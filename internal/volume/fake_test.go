package volume

import (
	"context"
	"errors"
	"strings"

	"github.com/nace/disksetup/internal/system"
)

// recordingRunner records every command line and answers from canned
// results keyed by the joined command line
type recordingRunner struct {
	calls   []string
	results map[string]*system.Result
	fail    map[string]bool
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{
		results: map[string]*system.Result{},
		fail:    map[string]bool{},
	}
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (*system.Result, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, line)
	if r.fail[line] {
		result := &system.Result{Command: line, ExitCode: 1}
		return result, &system.CommandError{Result: result, Err: errors.New("exit status 1")}
	}
	return r.answer(line), nil
}

func (r *recordingRunner) Probe(_ context.Context, name string, args ...string) (*system.Result, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, line)
	if r.fail[line] {
		result := &system.Result{Command: line, ExitCode: -1}
		return result, &system.CommandError{Result: result, Err: errors.New("executable file not found")}
	}
	return r.answer(line), nil
}

func (r *recordingRunner) answer(line string) *system.Result {
	if result, ok := r.results[line]; ok {
		return result
	}
	return &system.Result{Command: line}
}
