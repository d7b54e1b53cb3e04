// Package service runs the dice MCP server over a transport.
//
// It dials the dice gRPC service, registers the handlers from the domain
// package and serves MCP until the context ends.
package service
