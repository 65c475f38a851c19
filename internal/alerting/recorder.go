package alerting

import (
	"sync"

	"github.com/aleister1102/zeroleaks/internal/models"
)

// Batch is one LogBatch call captured by a Recorder.
type Batch struct {
	Source   string
	Findings []models.Finding
}

// Recorder is an in-memory Sink that keeps everything it receives.
type Recorder struct {
	mu       sync.Mutex
	batches  []Batch
	messages []string
}

func (r *Recorder) LogBatch(source string, findings []models.Finding) {
	cp := append([]models.Finding(nil), findings...)
	r.mu.Lock()
	r.batches = append(r.batches, Batch{Source: source, Findings: cp})
	r.mu.Unlock()
}

func (r *Recorder) Info(msg string)    { r.record("INFO: " + msg) }
func (r *Recorder) Warning(msg string) { r.record("WARNING: " + msg) }
func (r *Recorder) Error(msg string)   { r.record("ERROR: " + msg) }

func (r *Recorder) record(msg string) {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
}

// Batches returns a copy of the recorded batches.
func (r *Recorder) Batches() []Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Batch(nil), r.batches...)
}

// Messages returns a copy of the recorded operational messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// FindingCount returns the total number of findings across all batches.
func (r *Recorder) FindingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b.Findings)
	}
	return n
}
