// ABOUTME: Tests for the packet queue
// ABOUTME: Tests FIFO order, counters, blocking, shutdown priority and stress
package queue

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/Resonate-Protocol/resonate-play/pkg/lifecycle"
)

func packet(n int, fill byte) audio.Packet {
	data := make([]byte, n)
	for i := range data {
		data[i] = fill
	}
	return audio.Packet{Data: data, StreamIndex: 1}
}

func TestFIFOOrder(t *testing.T) {
	q := New(lifecycle.New())

	// More than the initial capacity so the ring grows while wrapped
	const total = 200
	for i := 0; i < total; i++ {
		if i == 50 {
			for j := 0; j < 30; j++ {
				pkt, err := q.Pop(false)
				if err != nil {
					t.Fatalf("pop %d failed: %v", j, err)
				}
				if pkt.Data[0] != byte(j) {
					t.Fatalf("expected packet %d, got %d", j, pkt.Data[0])
				}
			}
		}
		if err := q.Push(packet(1, byte(i))); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}

	for i := 30; i < total; i++ {
		pkt, err := q.Pop(false)
		if err != nil {
			t.Fatalf("pop %d failed: %v", i, err)
		}
		if pkt.Data[0] != byte(i) {
			t.Fatalf("expected packet %d, got %d", i, pkt.Data[0])
		}
	}

	if _, err := q.Pop(false); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty after draining, got %v", err)
	}
}

func TestCounterInvariant(t *testing.T) {
	q := New(lifecycle.New())

	sizes := []int{10, 0, 300, 7, 1024}
	expected := 0
	for _, n := range sizes {
		if err := q.Push(packet(n, 1)); err != nil {
			t.Fatalf("push failed: %v", err)
		}
		expected += n
	}

	if q.Len() != len(sizes) {
		t.Errorf("expected %d packets, got %d", len(sizes), q.Len())
	}
	if q.Size() != expected {
		t.Errorf("expected %d bytes, got %d", expected, q.Size())
	}

	for i, n := range sizes {
		pkt, err := q.Pop(false)
		if err != nil {
			t.Fatalf("pop failed: %v", err)
		}
		if pkt.Len() != n {
			t.Errorf("expected packet of %d bytes, got %d", n, pkt.Len())
		}
		expected -= n
		if q.Len() != len(sizes)-i-1 {
			t.Errorf("expected %d packets, got %d", len(sizes)-i-1, q.Len())
		}
		if q.Size() != expected {
			t.Errorf("expected %d bytes, got %d", expected, q.Size())
		}
	}

	stats := q.Stats()
	if stats.Pushed != int64(len(sizes)) || stats.Popped != int64(len(sizes)) {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestPushCopiesPayload(t *testing.T) {
	q := New(lifecycle.New())

	pkt := packet(4, 7)
	if err := q.Push(pkt); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	// Caller reuses its own buffer after pushing
	pkt.Data[0] = 99

	got, err := q.Pop(false)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if got.Data[0] != 7 {
		t.Errorf("queue aliased caller payload: got %d", got.Data[0])
	}
	if got.StreamIndex != 1 {
		t.Errorf("expected stream index 1, got %d", got.StreamIndex)
	}
}

func TestNonBlockingEmptyPop(t *testing.T) {
	q := New(lifecycle.New())

	done := make(chan error, 1)
	go func() {
		_, err := q.Pop(false)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("expected ErrEmpty, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("non-blocking pop blocked")
	}

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = q.Pop(false)
	})
	if allocs != 0 {
		t.Errorf("expected no allocations, got %.1f", allocs)
	}
}

func TestBlockingPopWakesOnPush(t *testing.T) {
	q := New(lifecycle.New())

	result := make(chan audio.Packet, 1)
	go func() {
		pkt, err := q.Pop(true)
		if err != nil {
			t.Errorf("pop failed: %v", err)
		}
		result <- pkt
	}()

	select {
	case <-result:
		t.Fatal("pop returned before any push")
	case <-time.After(50 * time.Millisecond):
	}

	if err := q.Push(packet(3, 5)); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	select {
	case pkt := <-result:
		if pkt.Len() != 3 || pkt.Data[0] != 5 {
			t.Errorf("unexpected packet: %+v", pkt)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked pop not woken by push")
	}
}

func TestBlockingPopWakesOnShutdown(t *testing.T) {
	sd := lifecycle.New()
	q := New(sd)

	const waiters = 3
	results := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			_, err := q.Pop(true)
			results <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	sd.Signal()

	for i := 0; i < waiters; i++ {
		select {
		case err := <-results:
			if !errors.Is(err, ErrShutdown) {
				t.Errorf("expected ErrShutdown, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("blocked pop not woken by shutdown")
		}
	}
}

func TestShutdownPriority(t *testing.T) {
	sd := lifecycle.New()
	q := New(sd)

	for i := 0; i < 5; i++ {
		if err := q.Push(packet(8, byte(i))); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	sd.Signal()

	for _, block := range []bool{true, false} {
		if _, err := q.Pop(block); !errors.Is(err, ErrShutdown) {
			t.Errorf("block=%v: expected ErrShutdown with packets queued, got %v", block, err)
		}
	}
	if _, err := q.PopTimeout(time.Second); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown from PopTimeout, got %v", err)
	}

	// Queued data stays accounted for, it is just never handed out
	if q.Len() != 5 {
		t.Errorf("expected 5 packets still queued, got %d", q.Len())
	}
}

func TestPushFailsWhenCapReached(t *testing.T) {
	q := New(lifecycle.New(), WithMaxPackets(2))

	if err := q.Push(packet(1, 0)); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if err := q.Push(packet(1, 1)); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if err := q.Push(packet(1, 2)); !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure, got %v", err)
	}

	if q.Len() != 2 || q.Size() != 2 {
		t.Errorf("rejected push changed counters: len=%d size=%d", q.Len(), q.Size())
	}
	if q.Stats().Rejected != 1 {
		t.Errorf("expected 1 rejected push, got %d", q.Stats().Rejected)
	}

	if _, err := q.Pop(false); err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if err := q.Push(packet(1, 3)); err != nil {
		t.Errorf("push after pop failed: %v", err)
	}
}

func TestPopTimeout(t *testing.T) {
	q := New(lifecycle.New())

	start := time.Now()
	_, err := q.PopTimeout(30 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("returned after %v, before the deadline", elapsed)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = q.Push(packet(2, 1))
	}()
	pkt, err := q.PopTimeout(time.Second)
	if err != nil {
		t.Fatalf("expected packet, got %v", err)
	}
	if pkt.Len() != 2 {
		t.Errorf("expected 2-byte packet, got %d", pkt.Len())
	}
}

func TestConcurrentStress(t *testing.T) {
	q := New(lifecycle.New())

	const total = 10000
	rng := rand.New(rand.NewSource(1))
	sizes := make([]int, total)
	for i := range sizes {
		sizes[i] = 4 + rng.Intn(2048)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i, n := range sizes {
			pkt := packet(n, 0)
			pkt.Data[0] = byte(i)
			pkt.Data[1] = byte(i >> 8)
			pkt.StreamIndex = i
			if err := q.Push(pkt); err != nil {
				t.Errorf("push %d failed: %v", i, err)
				return
			}
		}
	}()

	seen := make([]bool, total)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			pkt, err := q.Pop(true)
			if err != nil {
				t.Errorf("pop %d failed: %v", i, err)
				return
			}
			if pkt.StreamIndex != i {
				t.Errorf("expected packet %d, got %d", i, pkt.StreamIndex)
				return
			}
			if pkt.Len() != sizes[i] {
				t.Errorf("packet %d: expected %d bytes, got %d", i, sizes[i], pkt.Len())
			}
			if int(pkt.Data[0])|int(pkt.Data[1])<<8 != i&0xFFFF {
				t.Errorf("packet %d: payload mismatch", i)
			}
			if seen[i] {
				t.Errorf("packet %d delivered twice", i)
			}
			seen[i] = true
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("stress test deadlocked (missed wakeup?)")
	}

	for i, ok := range seen {
		if !ok {
			t.Fatalf("packet %d never delivered", i)
		}
	}
	if q.Len() != 0 || q.Size() != 0 {
		t.Errorf("expected empty queue, len=%d size=%d", q.Len(), q.Size())
	}
}
