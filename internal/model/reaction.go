package model

import "time"

// Reaction is one emoji attached by one user to one entry.
//
// The (EntryID, UserID, Emoji) tuple is unique: reacting twice with the
// same emoji is a conflict, but a user may hold several distinct emojis on
// the same entry. "Switching" emoji is modelled client-side as a delete of
// the old tuple followed by a create of the new one — never an update.
type Reaction struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entryId"`
	UserID    string    `json:"userId"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"user,omitempty"`
}
