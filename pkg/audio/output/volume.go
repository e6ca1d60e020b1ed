// ABOUTME: Software volume control shared by all backends
// ABOUTME: Scales 16-bit little-endian samples in place on the audio thread
package output

import (
	"encoding/binary"
	"log"
	"sync/atomic"
)

// volumeControl is safe to set from the UI while the audio thread applies it
type volumeControl struct {
	volume atomic.Int32
	muted  atomic.Bool
}

// resetVolume restores full volume, unmuted
func (v *volumeControl) resetVolume() {
	v.volume.Store(100)
	v.muted.Store(false)
}

// SetVolume sets the volume (0-100)
func (v *volumeControl) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	v.volume.Store(int32(volume))
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (v *volumeControl) SetMuted(muted bool) {
	v.muted.Store(muted)
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (v *volumeControl) GetVolume() int {
	return int(v.volume.Load())
}

// IsMuted returns mute state
func (v *volumeControl) IsMuted() bool {
	return v.muted.Load()
}

func (v *volumeControl) apply(buf []byte) {
	applyVolume(buf, int(v.volume.Load()), v.muted.Load())
}

// applyVolume scales packed 16-bit samples in place
func applyVolume(buf []byte, volume int, muted bool) {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1.0 {
		return
	}

	for i := 0; i+1 < len(buf); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(buf[i:]))
		binary.LittleEndian.PutUint16(buf[i:], uint16(int16(float64(sample)*multiplier)))
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
