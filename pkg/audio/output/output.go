// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
)

// Filler fills a device buffer completely
type Filler interface {
	Fill(dst []byte)
}

// Output represents an audio output device
type Output interface {
	// Open starts playback, pulling samples from src on the device thread
	Open(format audio.Format, src Filler) error

	// SetVolume sets the volume (0-100)
	SetVolume(volume int)

	// SetMuted sets mute state
	SetMuted(muted bool)

	// Close releases output resources
	Close() error
}

// Backends lists the selectable output backend names
var Backends = []string{"oto", "malgo", "portaudio"}

// New creates the named output backend
func New(name string, bufferFrames int) (Output, error) {
	switch name {
	case "oto":
		return NewOto(bufferFrames), nil
	case "malgo":
		return NewMalgo(bufferFrames), nil
	case "portaudio":
		return NewPortAudio(bufferFrames), nil
	default:
		return nil, fmt.Errorf("unknown output backend: %s", name)
	}
}
