// ABOUTME: Decode Engine state machine
// ABOUTME: Produces PCM chunks from queued packets, tracking partial consumption
package decode

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/Resonate-Protocol/resonate-play/pkg/audio/queue"
)

var (
	// ErrEndOfStream is returned once the session has shut down
	ErrEndOfStream = errors.New("end of stream")

	// ErrUnderrun is returned when a bounded wait for the next packet expires
	ErrUnderrun = errors.New("decode underrun")

	errNoProgress = errors.New("decoder made no progress")
)

// Log the first few decode errors, then one in every decodeErrorLogEvery
const (
	decodeErrorLogFirst = 5
	decodeErrorLogEvery = 100
)

// PacketSource supplies packets to the Engine
type PacketSource interface {
	Pop(block bool) (audio.Packet, error)
}

// TimedPacketSource is a PacketSource that supports a bounded wait
type TimedPacketSource interface {
	PacketSource
	PopTimeout(d time.Duration) (audio.Packet, error)
}

// EngineStats tracks decoding progress
type EngineStats struct {
	Packets      int64
	Frames       int64
	DecodeErrors int64
	Underruns    int64
}

// cursor is the packet currently being decoded and how far into it we are
type cursor struct {
	pkt    audio.Packet
	offset int
}

func (c *cursor) remaining() int {
	return c.pkt.Len() - c.offset
}

func (c *cursor) span() []byte {
	return c.pkt.Data[c.offset:]
}

func (c *cursor) advance(n int) {
	c.offset += n
	if c.offset > c.pkt.Len() {
		c.offset = c.pkt.Len()
	}
}

// skip discards the unconsumed rest of the packet
func (c *cursor) skip() {
	c.offset = c.pkt.Len()
}

func (c *cursor) hold(pkt audio.Packet) {
	c.pkt = pkt
	c.offset = 0
}

func (c *cursor) release() {
	c.pkt = audio.Packet{}
	c.offset = 0
}

// Engine converts a packet stream into a stream of PCM chunks
type Engine struct {
	source  PacketSource
	prim    Primitive
	maxWait time.Duration
	cur     cursor

	packets      atomic.Int64
	frames       atomic.Int64
	decodeErrors atomic.Int64
	underruns    atomic.Int64
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithMaxWait bounds how long Decode waits for the next packet. When the
// wait expires Decode returns ErrUnderrun. Zero waits indefinitely.
func WithMaxWait(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.maxWait = d
	}
}

// NewEngine creates an Engine reading packets from source
func NewEngine(source PacketSource, prim Primitive, opts ...EngineOption) *Engine {
	e := &Engine{
		source: source,
		prim:   prim,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decode fills buf with the next decoded chunk and returns its length.
// It returns ErrEndOfStream once shutdown is signaled. Decoder errors are
// not returned; they cause the rest of the offending packet to be skipped.
func (e *Engine) Decode(buf []byte) (int, error) {
	for {
		for e.cur.remaining() > 0 {
			consumed, frame, err := e.prim.Decode(e.cur.span())
			if err == nil && (consumed < 0 || (consumed == 0 && frame == nil)) {
				err = errNoProgress
			}
			if err != nil {
				e.decodeError(err)
				e.cur.skip()
				break
			}

			e.cur.advance(consumed)
			if frame == nil {
				continue
			}

			size := e.prim.FrameSize(frame)
			if size <= 0 {
				continue
			}
			if size > len(frame.Data) {
				size = len(frame.Data)
			}
			n := copy(buf, frame.Data[:size])
			e.frames.Add(1)
			return n, nil
		}

		e.cur.release()

		pkt, err := e.next()
		if err != nil {
			return 0, err
		}
		e.packets.Add(1)
		e.cur.hold(pkt)
	}
}

// next fetches the next packet, mapping queue results to engine errors
func (e *Engine) next() (audio.Packet, error) {
	var (
		pkt audio.Packet
		err error
	)
	if timed, ok := e.source.(TimedPacketSource); ok && e.maxWait > 0 {
		pkt, err = timed.PopTimeout(e.maxWait)
	} else {
		pkt, err = e.source.Pop(true)
	}

	switch {
	case err == nil:
		return pkt, nil
	case errors.Is(err, queue.ErrShutdown):
		return audio.Packet{}, ErrEndOfStream
	case errors.Is(err, queue.ErrTimeout):
		e.underruns.Add(1)
		return audio.Packet{}, ErrUnderrun
	default:
		return audio.Packet{}, fmt.Errorf("failed to fetch packet: %w", err)
	}
}

func (e *Engine) decodeError(err error) {
	n := e.decodeErrors.Add(1)
	if n <= decodeErrorLogFirst || n%decodeErrorLogEvery == 0 {
		log.Printf("Decode error (packet skipped, %d total): %v", n, err)
	}
}

// Stats returns a snapshot of the engine counters
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Packets:      e.packets.Load(),
		Frames:       e.frames.Load(),
		DecodeErrors: e.decodeErrors.Load(),
		Underruns:    e.underruns.Load(),
	}
}

// Close releases the primitive
func (e *Engine) Close() error {
	if c, ok := e.prim.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
