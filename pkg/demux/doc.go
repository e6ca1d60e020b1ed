// ABOUTME: Demux package reading packets from media inputs
// ABOUTME: Provides the Source interface, native sources and the Demux Driver
// Package demux reads compressed or raw packets from an input and feeds the
// audio ones into the packet queue.
//
// Sources:
//   - MP3Source: go-mp3, one 1152-sample frame of 16-bit PCM per packet
//   - FLACSource: mewkiz/flac, one FLAC frame per packet, narrowed to 16-bit
//   - ToneSource: 440Hz test tone
//
// The FFmpeg source lives in package ffmpeg.
package demux
