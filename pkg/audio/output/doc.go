// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface and oto, malgo and PortAudio backends
// Package output provides audio playback backends.
//
// Every backend pulls audio from a Filler on its own audio thread and plays
// signed 16-bit little-endian samples at the stream's native rate:
//   - Oto: default, pull-model player reading through io.Reader
//   - Malgo: miniaudio data callback
//   - PortAudio: stream callback (build with -tags portaudio)
//
// Example:
//
//	out, err := output.New("oto", 1024)
//	err = out.Open(format, feeder)
//	defer out.Close()
package output
