// Package transport provides the bridge drivers the capture layer
// polls for packets.
//
// A Driver is the minimal contract over the physical channel: timed
// reads, best-effort writes, and a Close that is safe to call while a
// read is outstanding (the read unblocks and fails). Two drivers
// exist: USB (the Lunatone DALI USB bridge) and serial (bridges
// exposing the same 64-byte packet contract over a serial port). The
// capture and protocol layers only ever see the Driver interface, so
// they run against a fake driver in tests with no hardware attached.
//
// Timed reads that expire report ErrReadTimeout, which callers treat
// as "no traffic", not as a failure. A vanished device reports
// ErrDeviceGone, which is fatal for the session.
package transport
