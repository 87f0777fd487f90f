// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User is a board participant. There is no account machinery: identity is
// whatever display name the client supplies, and a User row is created
// lazily the first time a name shows up on any write path (entry, reaction,
// comment).
//
// WHY Name AS THE IDENTITY KEY?
// The board is shared by two people who trust each other. A unique index on
// name is all the identity model there is — no password, no session. The
// generated ID exists so entries/reactions/comments can reference a stable
// key even if we ever allow renaming.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
