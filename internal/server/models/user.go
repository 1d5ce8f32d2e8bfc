// Package models holds the server-side domain types.
package models

// UserFields are the mutable profile attributes, already normalized and
// validated by the time they reach a repository.
type UserFields struct {
	Name     string
	Email    string
	Hobbies  string
	Location string
}

// User is the stored profile record. ID is a 24-character hex string
// assigned by the repository on creation and never changed afterwards.
type User struct {
	ID string
	UserFields
}
