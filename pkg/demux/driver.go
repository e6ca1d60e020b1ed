// ABOUTME: Demux Driver loop
// ABOUTME: Reads packets from a Source and pushes audio packets into the queue
package demux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/Resonate-Protocol/resonate-play/pkg/lifecycle"
)

const (
	// DefaultLinger is how long the driver waits after the queue empties so
	// the device buffer can play out
	DefaultLinger = 500 * time.Millisecond

	drainPollInterval = 10 * time.Millisecond

	pushErrorLogFirst = 5
	pushErrorLogEvery = 100
)

// PacketSink receives audio packets
type PacketSink interface {
	Push(pkt audio.Packet) error
	Len() int
}

// DriverStats tracks demux progress
type DriverStats struct {
	Packets      int64
	Discarded    int64
	PushFailures int64
}

// Driver moves packets from a Source into a PacketSink
type Driver struct {
	src      Source
	sink     PacketSink
	shutdown *lifecycle.Shutdown
	drain    bool
	linger   time.Duration

	packets      atomic.Int64
	discarded    atomic.Int64
	pushFailures atomic.Int64
}

// DriverOption configures a Driver
type DriverOption func(*Driver)

// WithDrain controls whether Run waits for the sink to empty at end of input
func WithDrain(drain bool) DriverOption {
	return func(d *Driver) {
		d.drain = drain
	}
}

// WithLinger sets the wait after the sink empties
func WithLinger(linger time.Duration) DriverOption {
	return func(d *Driver) {
		d.linger = linger
	}
}

// NewDriver creates a Driver. Draining is on by default.
func NewDriver(src Source, sink PacketSink, shutdown *lifecycle.Shutdown, opts ...DriverOption) *Driver {
	d := &Driver{
		src:      src,
		sink:     sink,
		shutdown: shutdown,
		drain:    true,
		linger:   DefaultLinger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run reads until end of input, shutdown or context cancellation. It
// returns nil at end of input and on shutdown.
func (d *Driver) Run(ctx context.Context) error {
	audioStream := d.src.AudioStream()

	for {
		if d.shutdown.IsShutdown() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		pkt, err := d.src.ReadPacket()
		if errors.Is(err, io.EOF) {
			log.Printf("End of input after %d packets", d.packets.Load())
			if d.drain {
				return d.drainSink(ctx)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read packet: %w", err)
		}

		if pkt.StreamIndex != audioStream {
			d.discarded.Add(1)
			continue
		}

		if err := d.sink.Push(pkt); err != nil {
			n := d.pushFailures.Add(1)
			if n <= pushErrorLogFirst || n%pushErrorLogEvery == 0 {
				log.Printf("Packet dropped (%d total): %v", n, err)
			}
			continue
		}
		d.packets.Add(1)
	}
}

// drainSink waits for queued packets to be consumed, then lingers
func (d *Driver) drainSink(ctx context.Context) error {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for d.sink.Len() > 0 {
		select {
		case <-d.shutdown.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if d.linger <= 0 {
		return nil
	}

	timer := time.NewTimer(d.linger)
	defer timer.Stop()

	select {
	case <-d.shutdown.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return nil
}

// Stats returns a snapshot of the driver counters
func (d *Driver) Stats() DriverStats {
	return DriverStats{
		Packets:      d.packets.Load(),
		Discarded:    d.discarded.Load(),
		PushFailures: d.pushFailures.Load(),
	}
}
