package eventbus

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcast/api/internal/models"
)

func note(msg string) models.ProgressNotification {
	return models.NewNotification(models.SeverityInfo, msg)
}

// drain reads whatever is immediately available without blocking.
func drain(o *Observer) []models.ProgressNotification {
	var out []models.ProgressNotification
	for {
		select {
		case n, ok := <-o.Notifications():
			if !ok {
				return out
			}
			out = append(out, n)
		default:
			return out
		}
	}
}

func TestBroadcastWithZeroObservers(t *testing.T) {
	h := NewHub(nil)
	h.Broadcast(note("nobody is listening"))
	assert.Zero(t, h.Len())
}

func TestSubscribeReceivesBroadcasts(t *testing.T) {
	h := NewHub(nil)
	o := NewObserver(4)
	h.Subscribe(o)

	h.Broadcast(note("one"))
	h.Broadcast(note("two"))

	got := drain(o)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Message)
	assert.Equal(t, "two", got[1].Message)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(nil)
	o := NewObserver(4)
	h.Subscribe(o)

	h.Broadcast(note("before"))
	h.Unsubscribe(o)
	h.Broadcast(note("after"))

	got := drain(o)
	require.Len(t, got, 1)
	assert.Equal(t, "before", got[0].Message)

	// channel is closed once unsubscribed
	_, ok := <-o.Notifications()
	assert.False(t, ok)
}

func TestDuplicateSubscribeIsNoOp(t *testing.T) {
	h := NewHub(nil)
	o := NewObserver(4)
	h.Subscribe(o)
	h.Subscribe(o)

	assert.Equal(t, 1, h.Len())

	h.Broadcast(note("once"))
	assert.Len(t, drain(o), 1)
}

func TestSlowObserverSkippedNotRemoved(t *testing.T) {
	h := NewHub(nil)
	o := NewObserver(1)
	h.Subscribe(o)

	h.Broadcast(note("fills the buffer"))
	h.Broadcast(note("dropped"))

	got := drain(o)
	require.Len(t, got, 1)
	assert.Equal(t, "fills the buffer", got[0].Message)

	// still subscribed and catching up
	assert.Equal(t, 1, h.Len())
	h.Broadcast(note("caught"))
	got = drain(o)
	require.Len(t, got, 1)
	assert.Equal(t, "caught", got[0].Message)
}

func TestFullObserverDoesNotAffectOthers(t *testing.T) {
	h := NewHub(nil)
	slow := NewObserver(1)
	fast := NewObserver(8)
	h.Subscribe(slow)
	h.Subscribe(fast)

	h.Broadcast(note("first"))
	h.Broadcast(note("second"))

	assert.Len(t, drain(slow), 1)
	assert.Len(t, drain(fast), 2)
}

func TestUnsubscribeTwiceIsSafe(t *testing.T) {
	h := NewHub(nil)
	o := NewObserver(1)
	h.Subscribe(o)

	h.Unsubscribe(o)
	h.Unsubscribe(o) // must not panic on the closed channel
	assert.Zero(t, h.Len())
}

func TestCloseUnsubscribesEveryone(t *testing.T) {
	h := NewHub(nil)
	a := NewObserver(1)
	b := NewObserver(1)
	h.Subscribe(a)
	h.Subscribe(b)

	h.Close()

	assert.Zero(t, h.Len())
	_, ok := <-a.Notifications()
	assert.False(t, ok)
	_, ok = <-b.Notifications()
	assert.False(t, ok)
}

func TestConcurrentBroadcastsAndSubscriptions(t *testing.T) {
	h := NewHub(nil)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := NewObserver(4)
			h.Subscribe(o)
			for j := 0; j < 50; j++ {
				h.Broadcast(note(fmt.Sprintf("worker %d msg %d", i, j)))
			}
			drain(o)
			h.Unsubscribe(o)
		}(i)
	}

	wg.Wait()
	assert.Zero(t, h.Len())
}
