// Package domain contains core concepts of the broadcast hub.
// This file defines live connections and their identity rules.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Handle identifies a live connection. Handles are issued by the registry
// from a monotonic counter, so a handle is never reassigned while the
// process is running. A handle alone is still not a durable identity:
// the pair (Handle, CreatedAt) is what credentials must match against.
type Handle uint64

// RoomID names a partition of connections. Fan-out never crosses rooms.
type RoomID string

// Connection represents one live participant.
// It is created on socket accept, removed on close, and never mutated.
type Connection struct {
	Handle    Handle
	Room      RoomID
	Name      string
	CreatedAt time.Time
}
