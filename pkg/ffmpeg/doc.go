// ABOUTME: FFmpeg demux and decode package
// ABOUTME: Wraps go-astiav format and codec contexts for the playback pipeline
// Package ffmpeg opens any container FFmpeg understands, exposes it as a
// demux.Source and decodes its audio stream as a decode.Primitive producing
// interleaved signed 16-bit PCM at the stream's native rate.
//
// Requires the FFmpeg shared libraries (libavformat, libavcodec,
// libswresample) at build time.
package ffmpeg
