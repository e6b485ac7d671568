// Package timeouts defines shared timeout constants used by the commands and
// the MCP HTTP transport.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 10 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TelemetryShutdown bounds the final span flush when a command exits.
const TelemetryShutdown = 5 * time.Second
