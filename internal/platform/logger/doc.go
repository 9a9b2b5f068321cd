// Package logger builds the service's slog logger and threads a
// request-scoped copy through context.Context. Output is JSON so log lines
// can be shipped as-is; NewTestLogger captures the same format for tests.
package logger
