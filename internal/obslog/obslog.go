// Package obslog adapts the standard library's log/slog to the small
// Debug/Info/Warn/Error(msg string, kv ...any) Logger interfaces the
// pipeline, tokenauth and reqvalidate packages accept, mirroring the
// teacher's own SlogAdapter for its oastypes.Logger interface.
package obslog

import "log/slog"

// Adapter wraps a *slog.Logger.
type Adapter struct {
	logger *slog.Logger
}

// New builds an Adapter. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(msg string, kv ...any) { a.logger.Debug(msg, kv...) }
func (a *Adapter) Info(msg string, kv ...any)  { a.logger.Info(msg, kv...) }
func (a *Adapter) Warn(msg string, kv ...any)  { a.logger.Warn(msg, kv...) }
func (a *Adapter) Error(msg string, kv ...any) { a.logger.Error(msg, kv...) }

// With returns a new Adapter with attrs prepended to every log call.
func (a *Adapter) With(kv ...any) *Adapter {
	return &Adapter{logger: a.logger.With(kv...)}
}
