// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats, compressed packets and sample helpers
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// OutputBitDepth is the bit depth every output backend plays (signed 16-bit LE)
	OutputBitDepth = 16
)

// Format describes the selected audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// FrameBytes returns the size of one 16-bit output sample frame (all channels)
func (f Format) FrameBytes() int {
	return f.Channels * OutputBitDepth / 8
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %d-bit", f.Codec, f.SampleRate, f.Channels, f.BitDepth)
}

// Packet is one unit of compressed data read from a container
type Packet struct {
	Data        []byte
	StreamIndex int
}

// Len returns the payload length in bytes
func (p Packet) Len() int {
	return len(p.Data)
}

// Clone returns a packet owning an independent copy of the payload
func (p Packet) Clone() Packet {
	return Packet{
		Data:        bytes.Clone(p.Data),
		StreamIndex: p.StreamIndex,
	}
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// ScaleToInt16 converts a sample of the given bit depth to 16-bit range
func ScaleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth < 16:
		return int16(sample << (16 - bitDepth))
	default:
		return int16(sample)
	}
}

// PutInt16s writes samples as packed little-endian bytes into dst and
// returns the number of bytes written
func PutInt16s(dst []byte, samples []int16) int {
	n := 0
	for _, s := range samples {
		if n+2 > len(dst) {
			break
		}
		binary.LittleEndian.PutUint16(dst[n:], uint16(s))
		n += 2
	}
	return n
}

// Int16s reads packed little-endian bytes into samples and returns the
// number of samples read
func Int16s(samples []int16, src []byte) int {
	n := len(src) / 2
	if n > len(samples) {
		n = len(samples)
	}
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	return n
}
