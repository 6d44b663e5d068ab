package models

import "time"

// Page is a shared space. It has no owner; membership lives in Access rows.
type Page struct {
	ID                   int64     `db:"id"`
	EncryptedTitle       string    `db:"encrypted_title"`
	EncryptedDescription string    `db:"encrypted_description"`
	CreatedAt            time.Time `db:"created_at"`
}

// Access is one member's envelope: the page key wrapped for that user.
type Access struct {
	UserID       int64     `db:"user_id"`
	PageID       int64     `db:"page_id"`
	EncryptedKey string    `db:"encrypted_key"`
	CreatedAt    time.Time `db:"created_at"`
}

// PageWithKey is a page as seen by one member, with that member's envelope.
type PageWithKey struct {
	Page
	EncryptedKey string
}
