// Package repository contains the database/sql repositories behind the room
// orchestrator. Sentinel errors defined here let higher layers distinguish
// failure scenarios without inspecting driver-specific error strings.
package repository

import "errors"

// ErrRoomNotFound is returned when a room id does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrUserNotFound is returned when a user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateID is returned when an insert collides with an existing
// primary key. Room creation retries with a fresh candidate id on it.
var ErrDuplicateID = errors.New("duplicate id")
