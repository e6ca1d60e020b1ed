// ABOUTME: Packet queue package
// ABOUTME: Thread-safe FIFO bridging the demux goroutine and the audio callback
// Package queue provides the packet queue between the container reader and
// the decoder.
//
// The queue is a growable ring of packets guarded by one monitor. Push
// copies the payload so the caller keeps ownership of its own buffer. Pop
// can block until a packet arrives or the session shuts down; once shutdown
// is signaled Pop never returns queued data.
//
// Example:
//
//	sd := lifecycle.New()
//	q := queue.New(sd)
//	_ = q.Push(pkt)
//	pkt, err := q.Pop(true)
//	if errors.Is(err, queue.ErrShutdown) { ... }
package queue
