// ABOUTME: Packet source interface
// ABOUTME: Common interface for container readers used by the Demux Driver
package demux

import (
	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
)

// Source reads packets from a media input
type Source interface {
	// Format describes the selected audio stream
	Format() audio.Format

	// AudioStream returns the index of the selected audio stream
	AudioStream() int

	// ReadPacket returns the next packet of any stream, or io.EOF at the end
	// of input. The payload may be reused by the next call.
	ReadPacket() (audio.Packet, error)

	// Close releases the input
	Close() error
}

// rawFormat describes the 16-bit PCM emitted by the native sources
func rawFormat(sampleRate, channels int) audio.Format {
	return audio.Format{
		Codec:      "pcm_s16le",
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   16,
	}
}
