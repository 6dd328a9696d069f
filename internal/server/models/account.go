// Package models defines the server-side records persisted by the access core.
package models

import "time"

// AccountStatus is the lifecycle state of an account. Accounts are never
// deleted by this service; they move between statuses instead.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountBanned    AccountStatus = "banned"
)

// Account is a login identity. PasswordHash and Salt are base64 strings and
// are either both set or both empty.
type Account struct {
	ID           string
	Mail         string
	PasswordHash string
	Salt         string
	Status       AccountStatus
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// HasCredentials reports whether both halves of the stored secret are present.
func (a *Account) HasCredentials() bool {
	return a.PasswordHash != "" && a.Salt != ""
}

// SetCredentials replaces hash and salt together.
func (a *Account) SetCredentials(hash, salt string) {
	a.PasswordHash, a.Salt = hash, salt
}
