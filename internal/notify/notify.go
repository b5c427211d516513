// Package notify carries short-lived user notices from background work to
// the front end.
package notify

import (
	"sync"
	"time"
)

// Severity of a notice.
type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Notice is one transient message.
type Notice struct {
	Message  string
	Severity Severity
	At       time.Time
}

// Notifier publishes notices.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(string, Severity) {}

// DefaultCapacity is the bus buffer size used by NewBus when capacity <= 0.
const DefaultCapacity = 16

// Bus is a buffered notice queue. Publishing never blocks; when the buffer
// is full the oldest notice is dropped.
type Bus struct {
	mu  sync.Mutex
	ch  chan Notice
	now func() time.Time
}

// NewBus returns a bus holding up to capacity undelivered notices.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{ch: make(chan Notice, capacity), now: time.Now}
}

// Notify implements Notifier.
func (b *Bus) Notify(message string, severity Severity) {
	b.Publish(Notice{Message: message, Severity: severity, At: b.now()})
}

// Publish enqueues n, evicting the oldest notice if the buffer is full.
func (b *Bus) Publish(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		select {
		case b.ch <- n:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// C returns the channel notices are delivered on.
func (b *Bus) C() <-chan Notice {
	return b.ch
}

// Drain returns every queued notice without blocking.
func (b *Bus) Drain() []Notice {
	var out []Notice
	for {
		select {
		case n := <-b.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

// Recorder keeps every notice in memory. Handy for one-shot commands and
// tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Message: message, Severity: severity, At: time.Now()})
}

// Notices returns a copy of what has been recorded.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
