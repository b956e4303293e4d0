package transport

import "sync"

// StrengthQueue is a single-slot, latest-wins mailbox between the analysis
// loop and the frame loop. Only the newest strength matters because the
// receiver recomputes per tick from elapsed time; stale values are dropped
// rather than queued. A terminate message is sticky and survives later
// strength writes.
type StrengthQueue struct {
	mu         sync.Mutex
	slot       Message
	hasMessage bool
	terminated bool
}

var _ Transport = (*StrengthQueue)(nil)

// NewStrengthQueue returns an empty mailbox.
func NewStrengthQueue() *StrengthQueue {
	return &StrengthQueue{}
}

// Send overwrites the slot with the newest message. Never blocks.
func (q *StrengthQueue) Send(msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if msg.Kind == KindTerminate {
		q.terminated = true
	}
	if q.terminated {
		q.slot = TerminateMessage()
	} else {
		q.slot = msg
	}
	q.hasMessage = true
	return nil
}

// Poll returns the pending message, if any, without blocking. A strength
// message is consumed by the read; the terminate sentinel keeps re-reading
// so every poller observes shutdown.
func (q *StrengthQueue) Poll() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.hasMessage {
		return Message{}, false
	}
	msg := q.slot
	if !q.terminated {
		q.hasMessage = false
	}
	return msg, true
}

// Close marks the queue terminated.
func (q *StrengthQueue) Close() error {
	return q.Send(TerminateMessage())
}
