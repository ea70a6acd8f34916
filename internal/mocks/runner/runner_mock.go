package runner_mock

import (
	"errors"

	"github.com/crystal-linux/jade/internal/runner"
)

// Recorder is a runner.Runner that records every command instead of running
// it. A command can be made to fail with FailOn.
type Recorder struct {
	Commands []runner.Command

	// FailOn is consulted before a command is recorded as successful. If it
	// returns true the command fails with exit status 1.
	FailOn func(cmd runner.Command) bool

	// Outputs maps a command name to the stdout returned by Output.
	Outputs map[string][]byte
}

func NewRecorder() *Recorder {
	return &Recorder{
		Outputs: make(map[string][]byte),
	}
}

// FailName makes every command with the given executable name fail.
func (r *Recorder) FailName(name string) {
	r.FailOn = func(cmd runner.Command) bool {
		return cmd.Name == name
	}
}

// FailAt makes the n-th (zero based) command fail.
func (r *Recorder) FailAt(n int) {
	r.FailOn = func(runner.Command) bool {
		return len(r.Commands) == n+1
	}
}

func (r *Recorder) Run(cmd runner.Command) error {
	_, err := r.Output(cmd)
	return err
}

func (r *Recorder) Output(cmd runner.Command) ([]byte, error) {
	r.Commands = append(r.Commands, cmd)
	if r.FailOn != nil && r.FailOn(cmd) {
		return nil, &runner.CommandError{
			Command:  cmd,
			ExitCode: 1,
			Err:      errors.New("exit status 1"),
		}
	}
	return r.Outputs[cmd.Name], nil
}

// Lines returns the recorded commands as strings, in execution order.
func (r *Recorder) Lines() []string {
	lines := make([]string, 0, len(r.Commands))
	for _, cmd := range r.Commands {
		lines = append(lines, cmd.String())
	}
	return lines
}

// Names returns the executable names of the recorded commands.
func (r *Recorder) Names() []string {
	names := make([]string, 0, len(r.Commands))
	for _, cmd := range r.Commands {
		names = append(names, cmd.Name)
	}
	return names
}
