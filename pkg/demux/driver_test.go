// ABOUTME: Demux Driver tests
// ABOUTME: Verifies stream filtering, draining, shutdown and push failure handling
package demux

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/Resonate-Protocol/resonate-play/pkg/audio/queue"
	"github.com/Resonate-Protocol/resonate-play/pkg/lifecycle"
)

// scriptedSource returns packets in order, then err (io.EOF if nil)
type scriptedSource struct {
	packets []audio.Packet
	err     error
	reads   int
	closed  bool
}

func (s *scriptedSource) Format() audio.Format { return rawFormat(48000, 2) }
func (s *scriptedSource) AudioStream() int     { return 0 }
func (s *scriptedSource) Close() error         { s.closed = true; return nil }

func (s *scriptedSource) ReadPacket() (audio.Packet, error) {
	s.reads++
	if len(s.packets) == 0 {
		if s.err != nil {
			return audio.Packet{}, s.err
		}
		return audio.Packet{}, io.EOF
	}
	pkt := s.packets[0]
	s.packets = s.packets[1:]
	return pkt, nil
}

// endlessSource never reaches end of input
type endlessSource struct{}

func (endlessSource) Format() audio.Format { return rawFormat(48000, 2) }
func (endlessSource) AudioStream() int     { return 0 }
func (endlessSource) Close() error         { return nil }
func (endlessSource) ReadPacket() (audio.Packet, error) {
	return audio.Packet{Data: []byte{1, 2, 3, 4}}, nil
}

func packet(stream int, data ...byte) audio.Packet {
	return audio.Packet{Data: data, StreamIndex: stream}
}

func TestDriverDiscardsOtherStreams(t *testing.T) {
	sd := lifecycle.New()
	q := queue.New(sd)
	src := &scriptedSource{packets: []audio.Packet{
		packet(0, 1), packet(1, 2), packet(0, 3), packet(2, 4),
	}}

	d := NewDriver(src, q, sd, WithDrain(false))
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if q.Len() != 2 {
		t.Fatalf("expected 2 queued packets, got %d", q.Len())
	}
	for _, want := range []byte{1, 3} {
		pkt, err := q.Pop(false)
		if err != nil {
			t.Fatalf("pop failed: %v", err)
		}
		if pkt.Data[0] != want {
			t.Errorf("expected payload %d, got %d", want, pkt.Data[0])
		}
	}

	stats := d.Stats()
	if stats.Packets != 2 || stats.Discarded != 2 {
		t.Errorf("expected 2 pushed and 2 discarded, got %+v", stats)
	}
}

func TestDriverDrainWaitsForConsumer(t *testing.T) {
	sd := lifecycle.New()
	q := queue.New(sd)
	src := &scriptedSource{packets: []audio.Packet{packet(0, 1), packet(0, 2), packet(0, 3)}}

	d := NewDriver(src, q, sd, WithLinger(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	select {
	case <-done:
		t.Fatal("driver returned before queue drained")
	case <-time.After(50 * time.Millisecond):
	}

	for i := 0; i < 3; i++ {
		if _, err := q.Pop(true); err != nil {
			t.Fatalf("pop failed: %v", err)
		}
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not return after queue drained")
	}
}

func TestDriverDrainAbortedByShutdown(t *testing.T) {
	sd := lifecycle.New()
	q := queue.New(sd)
	src := &scriptedSource{packets: []audio.Packet{packet(0, 1)}}

	d := NewDriver(src, q, sd)

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	sd.Signal()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not observe shutdown while draining")
	}
}

func TestDriverPushFailuresAreCounted(t *testing.T) {
	sd := lifecycle.New()
	q := queue.New(sd, queue.WithMaxPackets(1))
	src := &scriptedSource{packets: []audio.Packet{packet(0, 1), packet(0, 2), packet(0, 3)}}

	d := NewDriver(src, q, sd, WithDrain(false))
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stats := d.Stats()
	if stats.Packets != 1 {
		t.Errorf("expected 1 pushed packet, got %d", stats.Packets)
	}
	if stats.PushFailures != 2 {
		t.Errorf("expected 2 push failures, got %d", stats.PushFailures)
	}
	if src.reads != 4 {
		t.Errorf("expected driver to keep reading after failures, got %d reads", src.reads)
	}
}

func TestDriverReadError(t *testing.T) {
	sd := lifecycle.New()
	q := queue.New(sd)
	readErr := errors.New("corrupt container")
	src := &scriptedSource{err: readErr}

	d := NewDriver(src, q, sd)
	err := d.Run(context.Background())
	if !errors.Is(err, readErr) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestDriverStopsOnShutdown(t *testing.T) {
	tests := []struct {
		name   string
		before bool
	}{
		{"signaled before run", true},
		{"signaled during run", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := lifecycle.New()
			q := queue.New(sd)
			if tt.before {
				sd.Signal()
			}

			d := NewDriver(endlessSource{}, q, sd)
			done := make(chan error, 1)
			go func() { done <- d.Run(context.Background()) }()

			if !tt.before {
				time.Sleep(10 * time.Millisecond)
				sd.Signal()
			}

			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("driver did not stop")
			}

			if tt.before && d.Stats().Packets != 0 {
				t.Errorf("expected no packets read after shutdown, got %d", d.Stats().Packets)
			}
		})
	}
}

func TestDriverStopsOnContextCancel(t *testing.T) {
	sd := lifecycle.New()
	q := queue.New(sd)
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDriver(endlessSource{}, q, sd)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop on cancel")
	}
}
