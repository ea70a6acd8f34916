package runner

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// DefaultChrootCommand is the helper used to enter a target root. It sets up
// the API filesystems (/dev, /proc, /sys) that package scriptlets rely on.
const DefaultChrootCommand = "arch-chroot"

// var alias for exec.Command() that can be mocked for testing
var execCommand = exec.Command

// Host runs commands on the host system.
type Host struct {
	// ChrootCommand is prepended to commands that carry a Root.
	ChrootCommand string

	// DryRun logs commands instead of executing them.
	DryRun bool

	// Stdout and Stderr receive the command's output streams. Stderr is
	// additionally captured and reported in CommandError.
	Stdout io.Writer
	Stderr io.Writer

	Logger *logrus.Entry
}

// NewHost returns a Host runner logging through logger.
func NewHost(logger *logrus.Entry, dryRun bool) *Host {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Host{
		ChrootCommand: DefaultChrootCommand,
		DryRun:        dryRun,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Logger:        logger,
	}
}

func (h *Host) Run(cmd Command) error {
	_, err := h.run(cmd, false)
	return err
}

func (h *Host) Output(cmd Command) ([]byte, error) {
	return h.run(cmd, true)
}

func (h *Host) argv(cmd Command) (string, []string) {
	if cmd.Root == "" {
		return cmd.Name, cmd.Args
	}
	chroot := h.ChrootCommand
	if chroot == "" {
		chroot = DefaultChrootCommand
	}
	args := append([]string{cmd.Root, cmd.Name}, cmd.Args...)
	return chroot, args
}

func (h *Host) run(cmd Command, capture bool) ([]byte, error) {
	logger := h.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if h.DryRun {
		logger.Infof("dry run: skipping: %s", cmd)
		return nil, nil
	}
	if cmd.Description != "" {
		logger.Info(cmd.Description)
	}
	logger.Debugf("running: %s", cmd)

	name, args := h.argv(cmd)
	c := execCommand(name, args...)
	c.Dir = cmd.Dir
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	if capture {
		c.Stdout = &stdout
	} else if h.Stdout != nil {
		c.Stdout = h.Stdout
	}
	if h.Stderr != nil {
		c.Stderr = io.MultiWriter(h.Stderr, &stderr)
	} else {
		c.Stderr = &stderr
	}

	if err := c.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &CommandError{
			Command:  cmd,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stdout.Bytes(), nil
}
