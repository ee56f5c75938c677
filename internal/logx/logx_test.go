package logx

import (
	"bytes"
	"testing"

	"github.com/pixperk/bulksql/internal/ui"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := ui.Out
	ui.Out = &buf
	t.Cleanup(func() { ui.Out = prev })
	return &buf
}

func TestStyledLogger_MirrorsToTerminal(t *testing.T) {
	out := captureUI(t)
	core, logs := observer.New(zap.DebugLevel)
	log := NewStyledLogger(zap.New(core), false)

	log.Info("building statement", zap.String("table", "t"))
	log.Success("done")
	log.Debug("hidden")

	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, "t", logs.All()[0].ContextMap()["table"])
	assert.Contains(t, out.String(), "building statement")
	assert.Contains(t, out.String(), "done")
	assert.NotContains(t, out.String(), "hidden")
}

func TestStyledLogger_Quiet(t *testing.T) {
	out := captureUI(t)
	core, logs := observer.New(zap.InfoLevel)
	log := NewStyledLogger(zap.New(core), true).With(zap.String("cmd", "insert"))

	log.Info("quiet info")
	log.Warn("quiet warn")
	log.Error("loud error")

	assert.True(t, log.Quiet())
	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, "insert", logs.All()[2].ContextMap()["cmd"])
	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud error")
}

func TestSetQuiet(t *testing.T) {
	prev := StyledLog
	t.Cleanup(func() { StyledLog = prev })

	SetQuiet(true)
	assert.True(t, StyledLog.Quiet())
	InitStyledLogger()
	assert.True(t, StyledLog.Quiet())
	SetQuiet(false)
	assert.False(t, StyledLog.Quiet())
}
