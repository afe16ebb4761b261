package models

import "time"

// User is the directory record. Password holds the bcrypt hash, never
// plaintext. Status false means the record was soft-deleted.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	Cellphone string
	Status    bool
	CreatedAt time.Time
}

// Session is a login event recorded by the external authentication flow.
// This service only reads sessions when filtering users by login date.
type Session struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
}
