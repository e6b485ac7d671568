// Package service wires protocol transport to the exploding-dice tools.
//
// It is the transport adapter layer: the package knows how to run MCP over stdio
// or streamable HTTP and delegates every query to the domain handlers.
package service
