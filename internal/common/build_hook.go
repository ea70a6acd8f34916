package common

import (
	"github.com/sirupsen/logrus"
)

// BuildHook tags every entry with the commit jade was built from.
type BuildHook struct {
}

func (h *BuildHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.WarnLevel,
		logrus.ErrorLevel,
		logrus.FatalLevel,
		logrus.PanicLevel,
	}
}

func (h *BuildHook) Fire(e *logrus.Entry) error {
	e.Data["build_commit"] = BuildCommit
	return nil
}
