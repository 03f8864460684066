package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/mason/internal/adapters/logger"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, false)

	log.Debug("hidden")
	log.Info("visible")
	log.Warn("warned")
	log.Error(errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "warned")
	assert.Contains(t, out, "boom")
}

func TestLogger_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, true)

	log.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
