// Package server implements the WebSocket gateway and HTTP surface of the
// Anarcroom relay.
//
// The implementation is organized into specialized files for the connection
// gateway, clients, routing, middleware, and HTTP handlers to keep the
// codebase maintainable and testable as the project grows.
package server
