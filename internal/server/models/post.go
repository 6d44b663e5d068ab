package models

// Post is a message on a page. EncryptedCreatedAt is an RFC 3339 timestamp
// sealed with the server database key.
type Post struct {
	ID                 int64  `db:"id"`
	EncryptedMessage   string `db:"encrypted_message"`
	UserID             int64  `db:"user_id"`
	PageID             int64  `db:"page_id"`
	EncryptedCreatedAt string `db:"encrypted_created_at"`
}

// PostView is a post with its author's username.
type PostView struct {
	Post
	UserName string
}
