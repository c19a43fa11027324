package wizard

import (
	"sync"
	"time"
)

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a transient message for the person filling the form.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Field     string     `json:"field,omitempty"`
	Retryable bool       `json:"retryable,omitempty"`
	At        time.Time  `json:"at"`
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notice)
}

// NoticeBuffer collects notices until they are drained by a view.
type NoticeBuffer struct {
	mu      sync.Mutex
	notices []Notice
	limit   int
}

// NewNoticeBuffer keeps at most limit notices, dropping the oldest.
func NewNoticeBuffer(limit int) *NoticeBuffer {
	if limit <= 0 {
		limit = 20
	}
	return &NoticeBuffer{limit: limit}
}

func (b *NoticeBuffer) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
	if over := len(b.notices) - b.limit; over > 0 {
		b.notices = b.notices[over:]
	}
}

// Drain returns and clears the buffered notices.
func (b *NoticeBuffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

// Pending returns the number of buffered notices.
func (b *NoticeBuffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notices)
}
