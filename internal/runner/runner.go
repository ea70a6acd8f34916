// Package runner executes the host utilities that provisioning is built on.
//
// Every side effect of an installation is an invocation of a named executable
// with a literal argument list. A zero exit status means success, anything
// else is reported as a *CommandError and must abort the run.
package runner

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command describes a single invocation of an external executable.
type Command struct {
	Name string
	Args []string

	// Root, if set, runs the command inside the given target root through
	// the configured chroot helper.
	Root string

	// Dir is the working directory of the command.
	Dir string

	// Stdin is fed to the command's standard input. It is never logged, so
	// secrets such as passphrases must travel here and not in Args.
	Stdin []byte

	// Description is a human readable summary of the step, used in logs and
	// error messages.
	Description string
}

// Runner is implemented by everything that can execute a Command.
type Runner interface {
	// Run executes the command and waits for it to finish.
	Run(cmd Command) error
	// Output executes the command, waits for it to finish and returns what it
	// wrote to standard output.
	Output(cmd Command) ([]byte, error)
}

// String returns the command line, without standard input.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	line := strings.Join(parts, " ")
	if c.Root != "" {
		line = fmt.Sprintf("(root=%s) %s", c.Root, line)
	}
	if c.Dir != "" {
		line = fmt.Sprintf("(dir=%s) %s", c.Dir, line)
	}
	return line
}

// Chroot returns a copy of the command that runs inside root.
func (c Command) Chroot(root string) Command {
	c.Root = root
	return c
}

// InDir returns a copy of the command that runs in the given working directory.
func (c Command) InDir(dir string) Command {
	c.Dir = dir
	return c
}

// Describe returns a copy of the command with the given description.
func (c Command) Describe(format string, args ...interface{}) Command {
	c.Description = fmt.Sprintf(format, args...)
	return c
}

// New returns a Command running name with args.
func New(name string, args ...string) Command {
	return Command{
		Name: name,
		Args: args,
	}
}

// CommandError is returned when an external command could not be started or
// exited with a non-zero status.
type CommandError struct {
	Command  Command
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	what := e.Command.Description
	if what == "" {
		what = e.Command.String()
	}
	msg := fmt.Sprintf("%s: running %s failed: %v", what, e.Command.Name, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg = fmt.Sprintf("%s, output: %s", msg, stderr)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status carried by err, or -1 if err does not
// come from an exited command.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
