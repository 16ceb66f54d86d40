package runner

import "sync"

// Attachment is a named artifact kept for human diagnostics.
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// Reporter receives attachments while a run progresses.
type Reporter interface {
	Attach(a Attachment)
}

// MemoryReporter keeps every attachment in memory.
type MemoryReporter struct {
	mu          sync.Mutex
	attachments []Attachment
}

func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

func (m *MemoryReporter) Attach(a Attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachments = append(m.attachments, a)
}

func (m *MemoryReporter) Attachments() []Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Attachment, len(m.attachments))
	copy(out, m.attachments)
	return out
}

// Find returns the first attachment with the given name.
func (m *MemoryReporter) Find(name string) (Attachment, bool) {
	for _, a := range m.Attachments() {
		if a.Name == name {
			return a, true
		}
	}
	return Attachment{}, false
}

type discardReporter struct{}

func (discardReporter) Attach(Attachment) {}
