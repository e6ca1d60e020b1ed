// ABOUTME: Playback lifecycle package
// ABOUTME: Provides the one-way shutdown signal shared by a playback session
// Package lifecycle holds the shutdown flag of one playback session.
//
// A Shutdown starts unset and is set exactly once; it can never be cleared.
// Blocking components register a wake hook with OnSignal so that goroutines
// parked on a condition variable re-check the flag when it flips.
//
// Example:
//
//	sd := lifecycle.New()
//	q := queue.New(sd)
//	go func() { <-quit; sd.Signal() }()
package lifecycle
