// ABOUTME: Opus decode primitive
// ABOUTME: Decodes one Opus packet into one 16-bit PCM frame
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusFrame is the largest Opus frame in samples per channel (120ms at 48kHz)
const maxOpusFrame = 5760

// OpusDecoder decodes Opus packets
type OpusDecoder struct {
	decoder  *opus.Decoder
	channels int
	pcm      []int16
	out      []byte
}

// NewOpus creates a new Opus primitive
func NewOpus(format audio.Format) (Primitive, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus decoder: %s", format.Codec)
	}

	dec, err := opus.NewDecoder(format.SampleRate, format.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}

	return &OpusDecoder{
		decoder:  dec,
		channels: format.Channels,
		pcm:      make([]int16, maxOpusFrame*format.Channels),
		out:      make([]byte, maxOpusFrame*format.Channels*2),
	}, nil
}

// Decode decodes the whole span as one Opus packet
func (d *OpusDecoder) Decode(span []byte) (int, *Frame, error) {
	n, err := d.decoder.Decode(span, d.pcm)
	if err != nil {
		return 0, nil, fmt.Errorf("opus decode failed: %w", err)
	}

	written := audio.PutInt16s(d.out, d.pcm[:n*d.channels])
	return len(span), &Frame{
		Data:           d.out[:written],
		Samples:        n,
		Channels:       d.channels,
		BytesPerSample: 2,
	}, nil
}

// FrameSize returns the PCM byte length of frame
func (d *OpusDecoder) FrameSize(frame *Frame) int {
	return SampleBytes(frame)
}

// Close releases decoder resources
func (d *OpusDecoder) Close() error {
	return nil
}
