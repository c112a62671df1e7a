package recorder

import "github.com/google/uuid"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunReport) (string, error) { return uuid.NewString(), nil }
func (n *NoopRecorder) Close() error                          { return nil }
