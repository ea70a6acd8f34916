package common

import (
	"io"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/sirupsen/logrus"
)

// LogLevel maps the number of -v flags to a level: info, debug, then trace.
func LogLevel(verbosity int) logrus.Level {
	switch {
	case verbosity <= 0:
		return logrus.InfoLevel
	case verbosity == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// ConfigureLogging sets up logger for terminal output at the given
// verbosity. When running under systemd-journald, entries are also sent to
// the journal.
func ConfigureLogging(logger *logrus.Logger, out io.Writer, verbosity int) {
	logger.SetOutput(out)
	logger.SetLevel(LogLevel(verbosity))
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: verbosity == 0,
		FullTimestamp:    true,
	})
	logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.AddHook(&BuildHook{})
	if journal.Enabled() {
		logger.AddHook(&JournalHook{Identifier: "jade"})
	}
}
