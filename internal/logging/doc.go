// Package logging provides structured logging for dalimon.
//
// It wraps zap with package-level convenience functions and keeps all
// log output on stderr: stdout belongs to the capture trace. Logging
// is silent unless a level is set explicitly or through the
// DALIMON_LOG_LEVEL environment variable.
//
// Initialize at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    // falls back to a no-op logger
//	}
//	defer logging.Sync()
//
// Protocol debugging uses LogPacket, which hex-dumps bridge packets at
// debug level:
//
//	logging.LogPacket("bridge packet received", data)
//
// All functions are safe for concurrent use.
package logging
