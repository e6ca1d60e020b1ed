// ABOUTME: Player package wiring a playback session
// ABOUTME: Owns the shutdown flag, queue, decoder, feeder and output of one session
// Package player builds and runs one playback session:
//
//	source -> Demux Driver -> Packet Queue -> Decode Engine -> Feeder -> output
//
// Example:
//
//	sess, err := player.NewSession(player.Config{File: "song.mkv", Backend: "oto"})
//	defer sess.Close()
//	err = sess.Run(ctx)
package player
