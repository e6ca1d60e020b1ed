//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output driven by the PortAudio stream callback
package output

import (
	"fmt"
	"log"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	volumeControl
	bufferFrames int
	stream       *portaudio.Stream
	scratch      []byte
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(bufferFrames int) Output {
	p := &PortAudio{bufferFrames: bufferFrames}
	p.resetVolume()
	return p
}

// Open initializes PortAudio and starts the stream
func (p *PortAudio) Open(format audio.Format, src Filler) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.scratch = make([]byte, p.bufferFrames*format.Channels*2)

	callback := func(out []int16) {
		if len(p.scratch) < len(out)*2 {
			p.scratch = make([]byte, len(out)*2)
		}
		buf := p.scratch[:len(out)*2]
		src.Fill(buf)
		p.apply(buf)
		audio.Int16s(out, buf)
	}

	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), p.bufferFrames, callback)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.stream = stream

	log.Printf("Audio output initialized: %dHz, %d channels (portaudio, buffer %d frames)",
		format.SampleRate, format.Channels, p.bufferFrames)

	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			return err
		}
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}
	return portaudio.Terminate()
}
