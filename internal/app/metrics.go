package app

// Recorder receives engine-level counters. The observability package provides
// the Prometheus implementation.
type Recorder interface {
	SessionCreated(domainID, testType string)
	SessionCompleted(domainID string, percentage int)
	SessionAbandoned()
}

type nopRecorder struct{}

func (nopRecorder) SessionCreated(string, string) {}
func (nopRecorder) SessionCompleted(string, int) {}
func (nopRecorder) SessionAbandoned() {}
