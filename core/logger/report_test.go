package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: InfoLevel, Output: &buf, SessionID: "s1"})
	log.Info().Str("line", "ls -l").Msg(MsgLineAccepted)
	log.Info().Str("line", "ls").Msg(MsgLineAccepted)
	log.Warn().Err(errors.New("command not found: nope")).Str("kind", "not found").Msg(MsgSegmentFailed)
	log.Info().Int("job", 1).Msg(MsgJobStarted)
	log.Warn().Err(errors.New("exit status 1")).Int("job", 1).Msg(MsgJobFinished)

	other := New(Config{Level: InfoLevel, Output: &buf, SessionID: "s2"})
	other.Warn().Err(errors.New("boom")).Str("command", "setup").Msg(MsgStartupFailed)
	other.Info().Msg("unrelated")

	report := NewReport()
	require.NoError(t, ReadJSONLinesLog(&buf, report.Update))

	assert.Equal(t, 7, report.LogEntries)
	assert.Equal(t, 2, report.Sessions.Len())
	assert.Equal(t, 5, report.Sessions.Count("s1"))
	assert.Equal(t, 4, report.Levels.Count("info"))
	assert.Equal(t, 3, report.Levels.Count("warn"))
	assert.Equal(t, 2, report.Commands.Count("ls"))
	assert.Equal(t, 1, report.Failures.Count("not found", "command not found: nope"))
	assert.Equal(t, 1, report.Startup.Count("setup", "boom"))
	assert.Equal(t, JobReport{Started: 1, Finished: 1, Failed: 1}, report.Jobs)

	out, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"commands":{"ls":2}`)
	assert.Contains(t, string(out), `"failures":[{"count":1,"event":{"error":"command not found: nope","kind":"not found"}}]`)
}

func TestReadJSONLinesLog_invalid(t *testing.T) {
	err := ReadJSONLinesLog(strings.NewReader(`{"message": "ok"}` + "\n{not json"), func(Entry) {})
	assert.Error(t, err)
}

func TestReport_empty(t *testing.T) {
	out, err := json.Marshal(NewReport())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"log_entries": 0,
		"sessions": {},
		"levels": {},
		"commands": {},
		"failures": [],
		"startup_failures": [],
		"jobs": {"started": 0, "finished": 0, "failed": 0}
	}`, string(out))
}

func TestPathCounter_wrongColumns(t *testing.T) {
	assert.Panics(t, func() {
		NewPathCounter("a", "b").Increment("only-one")
	})
}
