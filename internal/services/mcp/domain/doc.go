// Package domain maps MCP tools and resources onto dice service calls.
//
// Handlers take a DiceClient, call it with a bounded timeout and return
// structured outputs that MCP clients can render.
package domain
