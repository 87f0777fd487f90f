package model

import "time"

// Comment is a free-text note attached to an entry. Deletion is restricted
// to the author; the check compares the supplied user name against the
// author's name in the service layer.
type Comment struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entryId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"user,omitempty"`
}
