// ABOUTME: Audio output feeder package
// ABOUTME: Fills device buffers exactly, falling back to silence
// Package feed provides the callback that audio backends drive.
//
// A Feeder owns a staging buffer refilled from a Decoder on demand. Fill
// always writes exactly len(dst) bytes: when no decoded audio is available
// (end of stream, underrun) it substitutes blocks of silence.
//
// Example:
//
//	f := feed.New(engine)
//	out.Open(format, f) // the backend calls f.Fill from its audio thread
package feed
