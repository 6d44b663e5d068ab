// Package models defines server-side data models persisted in the database.
// Every Encrypted* field is ciphertext the server stores verbatim.
package models

import "time"

// User is a registered account.
type User struct {
	ID       int64  `db:"id"`
	UserName string `db:"username"`
	// EmailHash is the hex SHA-256 of the normalized address, used for lookup.
	EmailHash string `db:"email_hash"`
	// EncryptedEmail is sealed with the server database key.
	EncryptedEmail string `db:"encrypted_email"`
	PasswordHash   string `db:"password_hash"`
	PublicKey      string `db:"public_key"`
	// EncryptedPrivateKey, AESSalt and BrowserKey are handed back to the
	// browser on login so it can unwrap page keys locally.
	EncryptedPrivateKey string    `db:"encrypted_private_key"`
	AESSalt             string    `db:"aes_salt"`
	BrowserKey          string    `db:"browser_key"`
	CreatedAt           time.Time `db:"created_at"`
}
