package models

import "time"

// Invite is a pending offer of access. EncryptedKey is wrapped for the
// invitee and becomes their Access envelope on accept.
type Invite struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	PageID       int64     `db:"page_id"`
	EncryptedKey string    `db:"encrypted_key"`
	CreatedAt    time.Time `db:"created_at"`
}

// InviteView is an invite joined with the page it points at.
type InviteView struct {
	Invite
	EncryptedTitle       string
	EncryptedDescription string
}

// StagedInvite carries the page key wrapped for a staged user at page
// creation time.
type StagedInvite struct {
	UserName     string
	EncryptedKey string
}
