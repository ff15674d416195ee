// Package world defines the static room layout monsters and players live in.
package world

import (
	"errors"
	"fmt"
)

// Room is one location in the world. Rooms are static content loaded from
// the catalog; combat references them by id only.
type Room struct {
	ID          int
	Name        string
	Description string
}

// Validate checks the room's catalog invariants.
func (r *Room) Validate() error {
	if r.ID < 1 {
		return fmt.Errorf("room id must be >= 1, got %d", r.ID)
	}
	if r.Name == "" {
		return errors.New("room name must not be empty")
	}
	return nil
}
