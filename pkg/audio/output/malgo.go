// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses the miniaudio data callback to fill device buffers exactly
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-play/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	volumeControl
	bufferFrames int
	malgoCtx     *malgo.AllocatedContext
	device       *malgo.Device
	src          Filler
	channels     int
	ready        bool
	mu           sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo(bufferFrames int) Output {
	o := &Malgo{bufferFrames: bufferFrames}
	o.resetVolume()
	return o
}

// Open initializes the output device with specified format
func (m *Malgo) Open(format audio.Format, src Filler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("malgo output already open")
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	m.src = src
	m.channels = format.Channels

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1
	if m.bufferFrames > 0 {
		deviceConfig.PeriodSizeInFrames = uint32(m.bufferFrames)
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (malgo/S16, period %d frames)",
		format.SampleRate, format.Channels, m.bufferFrames)

	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	n := int(frameCount) * m.channels * 2
	if n > len(pOutput) {
		n = len(pOutput)
	}
	out := pOutput[:n]
	m.src.Fill(out)
	m.apply(out)
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
		m.ready = false
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	return nil
}
