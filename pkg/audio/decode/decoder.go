// ABOUTME: Decode primitive interface definition
// ABOUTME: Common interface for packet decoders driven by the Engine
package decode

// Frame is one decoded block of interleaved PCM
type Frame struct {
	Data           []byte
	Samples        int // samples per channel
	Channels       int
	BytesPerSample int
}

// Primitive decodes the remaining bytes of a packet
type Primitive interface {
	// Decode consumes a prefix of span and returns how many bytes it used
	// and the decoded frame, if one was produced
	Decode(span []byte) (consumed int, frame *Frame, err error)

	// FrameSize returns the PCM byte length of a decoded frame
	FrameSize(frame *Frame) int
}

// SampleBytes returns samples * channels * bytes-per-sample for f
func SampleBytes(f *Frame) int {
	if f == nil {
		return 0
	}
	return f.Samples * f.Channels * f.BytesPerSample
}
