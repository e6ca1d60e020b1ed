// ABOUTME: Oto-based audio output implementation
// ABOUTME: Pull-model player reading the feeder through a volume-applying reader
package output

import (
	"fmt"
	"log"
	"time"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	volumeControl
	bufferFrames int
	otoCtx       *oto.Context
	player       *oto.Player
	sampleRate   int
	channels     int
	ready        bool
}

// NewOto creates a new Oto output
func NewOto(bufferFrames int) Output {
	o := &Oto{bufferFrames: bufferFrames}
	o.resetVolume()
	return o
}

// fillReader adapts a Filler to io.Reader; every read is fully satisfied
type fillReader struct {
	src Filler
	vc  *volumeControl
}

func (r *fillReader) Read(p []byte) (int, error) {
	r.src.Fill(p)
	r.vc.apply(p)
	return len(p), nil
}

// Open initializes the output device and starts pulling from src
func (o *Oto) Open(format audio.Format, src Filler) error {
	// oto allows only one context per process
	if o.otoCtx != nil {
		return fmt.Errorf("oto output already open (%dHz %dch)", o.sampleRate, o.channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	if o.bufferFrames > 0 && format.SampleRate > 0 {
		op.BufferSize = time.Duration(o.bufferFrames) * time.Second / time.Duration(format.SampleRate)
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = format.SampleRate
	o.channels = format.Channels

	o.player = o.otoCtx.NewPlayer(&fillReader{src: src, vc: &o.volumeControl})
	o.player.Play()

	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (oto, buffer %d frames)",
		format.SampleRate, format.Channels, o.bufferFrames)

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil && o.ready {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
		o.ready = false
	}
	return nil
}
