package testutil

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/mcoot/lanterngame/internal/logger"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *logger.Logger {
	return logger.Nop()
}

// BufferLogger returns a debug-level logger writing JSON lines into the returned buffer
func BufferLogger() (*logger.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.New(buf, "test", zerolog.DebugLevel), buf
}
