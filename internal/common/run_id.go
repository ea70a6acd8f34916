package common

import (
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
)

// RunIDKey is the log field identifying one invocation of jade.
const RunIDKey = "run_id"

// GenerateRunID returns a time-sortable globally unique identifier.
func GenerateRunID() string {
	return ksuid.New().String()
}

// RunLogger returns an entry of logger tagged with a new run ID.
func RunLogger(logger *logrus.Logger) *logrus.Entry {
	return logger.WithField(RunIDKey, GenerateRunID())
}
