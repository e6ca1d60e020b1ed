// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Packet types and sample conversion functions
// Package audio provides the fundamental types shared by the playback pipeline.
//
// This package defines:
//   - Format: Describes the selected audio stream (codec, sample rate, channels, bit depth)
//   - Packet: A compressed packet read from a container, tagged with its stream index
//
// It also provides utilities for converting between sample formats:
//   - 16-bit ↔ 24-bit conversions
//   - packed little-endian byte ↔ int16 conversions
//
// Example:
//
//	format := audio.Format{
//	    Codec:      "aac",
//	    SampleRate: 44100,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//
//	// Bytes needed for 1024 sample frames of 16-bit output
//	n := 1024 * format.FrameBytes()
package audio
