// Package models defines the server-side persistence models. Record payloads
// are opaque ciphertext documents; the server never holds plaintext user
// content.
package models

import (
	"encoding/json"
	"time"
)

// User is one registered account. Verifier is the client-derived master-key
// hash; the server never sees the passphrase or the master key.
type User struct {
	ID       string
	UserName string
	Salt     []byte
	Verifier []byte
}

// RefreshToken is one live refresh token.
type RefreshToken struct {
	UserID  string
	Expires time.Time
}

// Record is one synced user record, keyed by the client-side identity
// (user, table, record id) and addressed remotely by RemoteID.
type Record struct {
	RemoteID  string
	UserID    string
	TableName string
	RecordID  string
	Payload   json.RawMessage
	UpdatedAt time.Time
}
