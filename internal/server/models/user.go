// Package models defines the data structures persisted by the QuickPad
// server.
package models

// User is an account known to the credential store. PasswordHash is a
// bcrypt hash; the plaintext password never leaves the login request.
type User struct {
	Username     string
	PasswordHash string
}
