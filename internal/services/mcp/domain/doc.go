// Package domain translates MCP tool calls into exploding-dice queries.
//
// Every handler validates its input through the core packages, runs against
// a fresh analysis run so that no cache outlives the call, and returns exact
// rationals alongside float approximations and locale-formatted percentages.
package domain
