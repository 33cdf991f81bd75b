// Package capture runs the polling worker that turns bridge packets
// into a stream of bus frames.
//
// A Session owns one background goroutine polling the transport driver
// with short timed reads. Decoded frames are handed to the consumer
// through a bounded FIFO of 40 slots; when the consumer falls behind,
// the worker blocks rather than dropping frames, so no captured frame
// is ever lost silently. Echoed host transmits and malformed packets
// are logged and discarded before the queue.
//
// The queue is strictly single producer, single consumer: the worker
// is the sole writer and whoever calls NextFrame is the sole reader.
// Frames arrive in capture order with non-decreasing timestamps.
//
// Stopping is cooperative. Close signals the worker, which notices
// within one polling interval; frames already queued stay consumable
// afterwards. A vanished device ends the worker on its own, and
// NextFrame reports the fatal error once the queue drains.
package capture
