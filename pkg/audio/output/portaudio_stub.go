//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct {
	volumeControl
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(bufferFrames int) Output {
	p := &PortAudio{}
	p.resetVolume()
	return p
}

// Open initializes PortAudio
func (p *PortAudio) Open(format audio.Format, src Filler) error {
	return errPortAudioDisabled
}

// Close releases resources
func (p *PortAudio) Close() error {
	return errPortAudioDisabled
}
