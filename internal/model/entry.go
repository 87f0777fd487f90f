package model

import "time"

// EntryType distinguishes a memory of the past year from a wish for the
// next one. The two values are the only ones the API accepts.
type EntryType string

const (
	EntryTypeMemory EntryType = "MEMORY"
	EntryTypeWish   EntryType = "WISH"
)

// Valid reports whether t is one of the two known entry types.
func (t EntryType) Valid() bool {
	return t == EntryTypeMemory || t == EntryTypeWish
}

// Entry is a single memory or wish card.
//
// NULLABLE FIELDS:
// ImageURL and LockedUntil are pointers because "absent" is meaningful:
// an entry without a photo has ImageURL == nil, an entry that is not
// time-locked has LockedUntil == nil. With plain values we could not tell
// "no image" from "empty string image".
//
// NESTED EXPANSION:
// User, Reactions and Comments are filled by the repository when the entry
// is read, so a single GET returns everything the card needs. They are not
// written back on create/update.
type Entry struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Type        EntryType  `json:"type"`
	Content     string     `json:"content"`
	Year        int        `json:"year"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	User      *User      `json:"user,omitempty"`
	Reactions []Reaction `json:"reactions"`
	Comments  []Comment  `json:"comments"`

	// Locked is computed at read time — never stored. See LockedAt.
	Locked bool `json:"locked"`
}

// LockedAt reports whether the entry's content is hidden at the given
// instant. A lock is purely a comparison against the stored timestamp, so
// an entry unlocks by itself once LockedUntil passes — there is no stored
// flag that could go stale.
func (e *Entry) LockedAt(now time.Time) bool {
	return e.LockedUntil != nil && now.Before(*e.LockedUntil)
}
