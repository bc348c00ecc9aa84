// Package notify holds the single visible status message shown to the user.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"violet-client/internal/model"
)

const DefaultTTL = 4 * time.Second

// Observer receives every emitted notification, in emission order.
type Observer func(model.Notification)

// Queue is a single-slot notification queue. Emitting while a notification is
// visible replaces it and restarts the auto-dismiss timer.
type Queue struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	current   *model.Notification
	timer     *time.Timer
	observers []Observer
}

func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, now: time.Now}
}

// Subscribe registers an observer. Observers are called outside the queue lock.
func (q *Queue) Subscribe(o Observer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.observers = append(q.observers, o)
}

func (q *Queue) Success(message string) model.Notification {
	return q.Emit(message, model.SeveritySuccess)
}

func (q *Queue) Error(message string) model.Notification {
	return q.Emit(message, model.SeverityError)
}

func (q *Queue) Emit(message string, severity model.Severity) model.Notification {
	if severity == "" {
		severity = model.SeveritySuccess
	}
	n := model.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		ExpiresAt: q.now().Add(q.ttl),
	}

	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
	}
	q.current = &n
	id := n.ID
	q.timer = time.AfterFunc(q.ttl, func() { q.expire(id) })
	observers := append([]Observer(nil), q.observers...)
	q.mu.Unlock()

	for _, o := range observers {
		o(n)
	}
	return n
}

// expire clears the slot only if it still holds the notification the timer was
// started for; a stopped timer may already be running when it is superseded.
func (q *Queue) expire(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current != nil && q.current.ID == id {
		q.current = nil
		q.timer = nil
	}
}

func (q *Queue) Dismiss() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.current = nil
}

// Current returns the visible notification, if any.
func (q *Queue) Current() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return model.Notification{}, false
	}
	return *q.current, true
}
