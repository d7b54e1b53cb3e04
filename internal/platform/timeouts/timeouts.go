// Package timeouts defines the timeout constants shared by the roll services.
package timeouts

import "time"

// GRPCDial caps the wait for a healthy dice server when an adapter starts.
const GRPCDial = 10 * time.Second

// GRPCRequest caps a single dice call made on behalf of an MCP client.
const GRPCRequest = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
