// ABOUTME: PCM decode primitive
// ABOUTME: Passes 16-bit PCM through and narrows 24-bit PCM to 16-bit
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
)

// PCMDecoder handles raw little-endian PCM packets
type PCMDecoder struct {
	bitDepth int
	channels int
	scratch  []byte
}

// NewPCM creates a new PCM primitive
func NewPCM(format audio.Format) (Primitive, error) {
	bitDepth := format.BitDepth
	switch format.Codec {
	case "pcm":
	case "pcm_s16le":
		bitDepth = 16
	case "pcm_s24le":
		bitDepth = 24
	default:
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	return &PCMDecoder{
		bitDepth: bitDepth,
		channels: format.Channels,
	}, nil
}

// Decode consumes the whole span; trailing bytes that do not make up a
// full sample frame are consumed without output
func (d *PCMDecoder) Decode(span []byte) (int, *Frame, error) {
	bytesPerSample := d.bitDepth / 8
	align := bytesPerSample * d.channels
	usable := len(span) - len(span)%align
	if usable == 0 {
		return len(span), nil, nil
	}

	frame := &Frame{
		Samples:        usable / align,
		Channels:       d.channels,
		BytesPerSample: 2,
	}

	if d.bitDepth == 16 {
		frame.Data = span[:usable]
		return len(span), frame, nil
	}

	// 24-bit PCM: 3 bytes per sample, narrowed to 16-bit
	numSamples := usable / 3
	if cap(d.scratch) < numSamples*2 {
		d.scratch = make([]byte, numSamples*2)
	}
	out := d.scratch[:numSamples*2]
	for i := 0; i < numSamples; i++ {
		b := [3]byte{span[i*3], span[i*3+1], span[i*3+2]}
		s := audio.SampleToInt16(audio.SampleFrom24Bit(b))
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	frame.Data = out
	return len(span), frame, nil
}

// FrameSize returns the PCM byte length of frame
func (d *PCMDecoder) FrameSize(frame *Frame) int {
	return SampleBytes(frame)
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
