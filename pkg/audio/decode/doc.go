// ABOUTME: Audio decode package
// ABOUTME: Decode primitives and the packet-to-PCM Decode Engine
// Package decode turns a stream of compressed packets into PCM chunks.
//
// A Primitive decodes part of one packet at a time and reports how many
// bytes it consumed and whether a frame came out. The Engine keeps a cursor
// into the current packet, so one packet may yield zero, one or several
// frames, and fetches the next packet from the queue when the current one
// is used up.
//
// Primitives provided here:
//   - PCM: 16-bit and 24-bit little-endian PCM pass-through
//   - Opus: one Opus packet per frame
//
// The FFmpeg primitive lives in package ffmpeg.
//
// Example:
//
//	prim, err := decode.NewPCM(format)
//	engine := decode.NewEngine(q, prim)
//	n, err := engine.Decode(buf)
//	if errors.Is(err, decode.ErrEndOfStream) { ... }
package decode
