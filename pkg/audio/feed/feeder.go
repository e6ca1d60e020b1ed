// ABOUTME: Audio Output Feeder with staging buffer
// ABOUTME: Guarantees exact-length output, substituting silence on failure
package feed

import (
	"sync/atomic"
)

const (
	// MaxAudioFrameSize is the largest decoded chunk expected from one frame
	// (1 second of 48kHz 32-bit stereo)
	MaxAudioFrameSize = 192000

	// StagingSize is the staging buffer capacity
	StagingSize = MaxAudioFrameSize * 3 / 2

	// SilenceSize is the length of one fabricated silence block
	SilenceSize = 1024
)

// Decoder produces PCM chunks into a caller-supplied buffer
type Decoder interface {
	Decode(buf []byte) (int, error)
}

// Stats tracks what the feeder delivered
type Stats struct {
	Bytes        int64
	Chunks       int64
	SilenceFills int64
}

// Feeder serves exact-length reads from decoded audio
type Feeder struct {
	dec     Decoder
	silence byte

	buf   []byte
	size  int // high-water mark
	index int // read cursor

	bytes        atomic.Int64
	chunks       atomic.Int64
	silenceFills atomic.Int64
}

// Option configures a Feeder
type Option func(*Feeder)

// WithSilenceValue sets the byte written for silence (0 for signed PCM)
func WithSilenceValue(v byte) Option {
	return func(f *Feeder) {
		f.silence = v
	}
}

// WithStagingSize overrides the staging buffer capacity
func WithStagingSize(n int) Option {
	return func(f *Feeder) {
		if n >= SilenceSize {
			f.buf = make([]byte, n)
		}
	}
}

// New creates a Feeder pulling chunks from dec
func New(dec Decoder, opts ...Option) *Feeder {
	f := &Feeder{
		dec: dec,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.buf == nil {
		f.buf = make([]byte, StagingSize)
	}
	return f
}

// Fill writes exactly len(dst) bytes of audio into dst
func (f *Feeder) Fill(dst []byte) {
	for len(dst) > 0 {
		if f.index >= f.size {
			f.refill()
		}

		n := copy(dst, f.buf[f.index:f.size])
		dst = dst[n:]
		f.index += n
		f.bytes.Add(int64(n))
	}
}

// Read implements io.Reader for pull-model backends; it never fails
func (f *Feeder) Read(p []byte) (int, error) {
	f.Fill(p)
	return len(p), nil
}

// refill replaces the staging buffer content with the next decoded chunk,
// or with a block of silence when none is available
func (f *Feeder) refill() {
	n, err := f.dec.Decode(f.buf)
	if err != nil {
		f.fillSilence()
		return
	}
	if n > len(f.buf) {
		n = len(f.buf)
	}
	f.size = n
	f.index = 0
	f.chunks.Add(1)
}

func (f *Feeder) fillSilence() {
	block := f.buf[:SilenceSize]
	for i := range block {
		block[i] = f.silence
	}
	f.size = SilenceSize
	f.index = 0
	f.silenceFills.Add(1)
}

// Stats returns a snapshot of the delivery counters
func (f *Feeder) Stats() Stats {
	return Stats{
		Bytes:        f.bytes.Load(),
		Chunks:       f.chunks.Load(),
		SilenceFills: f.silenceFills.Load(),
	}
}
