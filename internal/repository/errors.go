// Package repository implements data access over MySQL. Sentinel errors let
// handlers map failures onto the HTTP taxonomy without inspecting driver
// error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email that is already
// taken. Handlers translate this into HTTP 400.
var ErrEmailExists = errors.New("user already exists")

// ErrRoomExists is returned when creating or renumbering a room to a room
// number that is already in use. Handlers translate this into HTTP 400.
var ErrRoomExists = errors.New("room already exists")

// ErrNotFound is returned when a record does not exist. Handlers translate
// this into HTTP 404 (or 401 for user lookups during authentication).
var ErrNotFound = errors.New("not found")
