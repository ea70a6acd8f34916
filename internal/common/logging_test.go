package common

import (
	"bytes"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLogrus(buf *bytes.Buffer) *logrus.Logger {
	return &logrus.Logger{
		Out: buf,
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: true,
			DisableColors:    true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.DebugLevel,
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, LogLevel(-1))
	assert.Equal(t, logrus.InfoLevel, LogLevel(0))
	assert.Equal(t, logrus.DebugLevel, LogLevel(1))
	assert.Equal(t, logrus.TraceLevel, LogLevel(2))
	assert.Equal(t, logrus.TraceLevel, LogLevel(5))
}

func TestConfigureLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	ConfigureLogging(l, buf, 1)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.Debug("debug message")
	l.Trace("trace message")
	assert.Contains(t, buf.String(), "debug message")
	assert.NotContains(t, buf.String(), "trace message")
}

func TestBuildHook(t *testing.T) {
	buf := &bytes.Buffer{}
	l := makeLogrus(buf)
	l.AddHook(&BuildHook{})

	l.Info("info message")
	require.Equal(t, "level=info msg=\"info message\"\n", buf.String())

	buf.Reset()
	l.Warn("warn message")
	require.Equal(t, "level=warning msg=\"warn message\" build_commit="+BuildCommit+"\n", buf.String())
}

func TestRunLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := makeLogrus(buf)

	entry := RunLogger(l)
	id, ok := entry.Data[RunIDKey].(string)
	require.True(t, ok)
	_, err := ksuid.Parse(id)
	require.NoError(t, err)

	entry.Info("step")
	require.Equal(t, "level=info msg=step run_id="+id+"\n", buf.String())

	assert.NotEqual(t, GenerateRunID(), GenerateRunID())
}

func TestJournalFields(t *testing.T) {
	hook := &JournalHook{Identifier: "jade"}
	fields := hook.fields(logrus.Fields{
		"run_id":  "2Dx",
		"device":  "/dev/sda",
		"exit-ok": true,
		"_hidden": 3,
		"__":      "dropped",
	})
	assert.Equal(t, map[string]string{
		"RUN_ID":            "2Dx",
		"DEVICE":            "/dev/sda",
		"EXIT_OK":           "true",
		"HIDDEN":            "3",
		"SYSLOG_IDENTIFIER": "jade",
	}, fields)
}
