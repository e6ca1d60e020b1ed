// ABOUTME: Ring-buffer packet queue with a blocking pop
// ABOUTME: One mutex + condition variable guard the ring, count and byte sum
package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/Resonate-Protocol/resonate-play/pkg/lifecycle"
)

const initialCapacity = 64

var (
	// ErrEmpty is returned by a non-blocking Pop on an empty queue
	ErrEmpty = errors.New("queue empty")

	// ErrShutdown is returned by Pop once the session is shutting down
	ErrShutdown = errors.New("queue shut down")

	// ErrTimeout is returned by PopTimeout when no packet arrived in time
	ErrTimeout = errors.New("queue wait timed out")

	// ErrAllocationFailure is returned by Push when the ring cannot grow
	ErrAllocationFailure = errors.New("queue allocation failure")
)

// Queue is a thread-safe FIFO of packets
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	ring  []audio.Packet
	head  int
	count int
	size  int

	maxPackets int
	shutdown   *lifecycle.Shutdown

	stats Stats
}

// Stats tracks queue traffic
type Stats struct {
	Pushed   int64
	Popped   int64
	Rejected int64
}

// Option configures a Queue
type Option func(*Queue)

// WithMaxPackets caps the number of queued packets (0 = unbounded)
func WithMaxPackets(n int) Option {
	return func(q *Queue) {
		q.maxPackets = n
	}
}

// New creates an empty queue bound to the session's shutdown flag
func New(shutdown *lifecycle.Shutdown, opts ...Option) *Queue {
	q := &Queue{
		shutdown: shutdown,
	}
	for _, opt := range opts {
		opt(q)
	}

	capacity := initialCapacity
	if q.maxPackets > 0 && q.maxPackets < capacity {
		capacity = q.maxPackets
	}
	q.ring = make([]audio.Packet, capacity)
	q.cond = sync.NewCond(&q.mu)

	shutdown.OnSignal(q.wake)
	return q
}

// Push copies pkt into the queue and wakes one waiter
func (q *Queue) Push(pkt audio.Packet) error {
	owned := pkt.Clone()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.ring) && !q.grow() {
		q.stats.Rejected++
		return ErrAllocationFailure
	}

	q.ring[(q.head+q.count)%len(q.ring)] = owned
	q.count++
	q.size += owned.Len()
	q.stats.Pushed++

	q.cond.Signal()
	return nil
}

// Pop removes the head packet. With block set it waits until a packet
// arrives or shutdown is signaled.
func (q *Queue) Pop(block bool) (audio.Packet, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.shutdown.IsShutdown() {
			return audio.Packet{}, ErrShutdown
		}
		if q.count > 0 {
			return q.take(), nil
		}
		if !block {
			return audio.Packet{}, ErrEmpty
		}
		q.cond.Wait()
	}
}

// PopTimeout behaves like a blocking Pop that gives up after d
func (q *Queue) PopTimeout(d time.Duration) (audio.Packet, error) {
	deadline := time.Now().Add(d)
	timer := time.AfterFunc(d, q.wake)
	defer timer.Stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.shutdown.IsShutdown() {
			return audio.Packet{}, ErrShutdown
		}
		if q.count > 0 {
			return q.take(), nil
		}
		if !time.Now().Before(deadline) {
			return audio.Packet{}, ErrTimeout
		}
		q.cond.Wait()
	}
}

// Len returns the number of queued packets
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Size returns the sum of queued payload lengths in bytes
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Stats returns a snapshot of the traffic counters
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// take detaches the head packet (must hold q.mu)
func (q *Queue) take() audio.Packet {
	pkt := q.ring[q.head]
	q.ring[q.head] = audio.Packet{}
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	q.size -= pkt.Len()
	q.stats.Popped++
	return pkt
}

// grow doubles the ring, reordering it to start at index 0 (must hold q.mu)
func (q *Queue) grow() bool {
	newCap := len(q.ring) * 2
	if q.maxPackets > 0 {
		if len(q.ring) >= q.maxPackets {
			return false
		}
		if newCap > q.maxPackets {
			newCap = q.maxPackets
		}
	}

	ring := make([]audio.Packet, newCap)
	for i := 0; i < q.count; i++ {
		ring[i] = q.ring[(q.head+i)%len(q.ring)]
	}
	q.ring = ring
	q.head = 0
	return true
}

// wake makes every waiter re-check its wait condition
func (q *Queue) wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}
