// ABOUTME: Test tone packet source
// ABOUTME: Generates a 440Hz sine wave as 16-bit PCM packets
package demux

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
)

const (
	// ToneFrequency is the A4 note
	ToneFrequency = 440.0

	// ToneFramesPerPacket is the number of sample frames in each tone packet
	ToneFramesPerPacket = 1024

	toneAmplitude = 32767.0 * 0.5 // 50% volume
)

// ToneSource generates a 440Hz test tone
type ToneSource struct {
	format      audio.Format
	sampleIndex uint64
	totalFrames uint64 // 0 = unlimited
	buf         []byte
}

// NewToneSource creates a tone generator. A duration of zero or less never
// ends.
func NewToneSource(sampleRate, channels int, duration time.Duration) *ToneSource {
	var total uint64
	if duration > 0 {
		total = uint64(duration.Seconds() * float64(sampleRate))
	}
	return &ToneSource{
		format:      rawFormat(sampleRate, channels),
		totalFrames: total,
		buf:         make([]byte, ToneFramesPerPacket*channels*2),
	}
}

func (s *ToneSource) Format() audio.Format { return s.format }
func (s *ToneSource) AudioStream() int     { return 0 }
func (s *ToneSource) Close() error         { return nil }

// ReadPacket returns the next chunk of the tone
func (s *ToneSource) ReadPacket() (audio.Packet, error) {
	frames := uint64(ToneFramesPerPacket)
	if s.totalFrames > 0 {
		if s.sampleIndex >= s.totalFrames {
			return audio.Packet{}, io.EOF
		}
		if left := s.totalFrames - s.sampleIndex; left < frames {
			frames = left
		}
	}

	channels := s.format.Channels
	for i := uint64(0); i < frames; i++ {
		t := float64(s.sampleIndex+i) / float64(s.format.SampleRate)
		pcmValue := int16(math.Sin(2*math.Pi*ToneFrequency*t) * toneAmplitude)

		for ch := 0; ch < channels; ch++ {
			off := (int(i)*channels + ch) * 2
			binary.LittleEndian.PutUint16(s.buf[off:], uint16(pcmValue))
		}
	}
	s.sampleIndex += frames

	return audio.Packet{Data: s.buf[:int(frames)*channels*2]}, nil
}
