// Package logging provides a simple leveled logging interface for the
// playlist player service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// Messages are written through zerolog. The log level is configured via the
// LOG_LEVEL environment variable (or DEBUG=true), and LOG_FILE adds a
// size-rotated file sink next to the console output.
package logging
