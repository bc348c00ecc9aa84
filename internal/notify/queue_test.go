package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violet-client/internal/model"
)

func TestEmitDefaultsToSuccess(t *testing.T) {
	q := NewQueue(time.Minute)

	n := q.Emit("Welcome back!", "")
	assert.Equal(t, model.SeveritySuccess, n.Severity)
	assert.NotEmpty(t, n.ID)

	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "Welcome back!", current.Message)
}

func TestEmitReplacesVisibleNotification(t *testing.T) {
	q := NewQueue(time.Minute)

	q.Success("first")
	second := q.Error("second")

	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, model.SeverityError, current.Severity)
}

func TestNotificationExpires(t *testing.T) {
	q := NewQueue(20 * time.Millisecond)
	q.Success("short lived")

	assert.Eventually(t, func() bool {
		_, ok := q.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestSupersedingResetsTimer(t *testing.T) {
	q := NewQueue(80 * time.Millisecond)
	q.Success("first")

	time.Sleep(50 * time.Millisecond)
	q.Success("second")

	// The first timer would have fired by now; the second must still be visible.
	time.Sleep(50 * time.Millisecond)
	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "second", current.Message)

	assert.Eventually(t, func() bool {
		_, ok := q.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestDismiss(t *testing.T) {
	q := NewQueue(time.Minute)
	q.Error("oops")
	q.Dismiss()

	_, ok := q.Current()
	assert.False(t, ok)
}

func TestObserversSeeEveryNotificationInOrder(t *testing.T) {
	q := NewQueue(time.Minute)

	var mu sync.Mutex
	var got []string
	q.Subscribe(func(n model.Notification) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, n.Message)
	})

	q.Success("a")
	q.Error("b")
	q.Success("c")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
