// Package models defines client-side data models persisted in the local
// store. Content columns hold AEAD ciphertext alongside their nonces;
// bookkeeping columns (ids, timestamps, sync state) stay plaintext.
package models

import "time"

// SyncStatus tracks whether a local mutation has been acknowledged by the
// backend.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// JournalEntry is a private journal record. Payload is the encrypted
// JournalPayload.
type JournalEntry struct {
	ID         string
	Payload    []byte
	Nonce      []byte
	SyncStatus SyncStatus
	RemoteID   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// SharedWith, when set, names the sponsor connection this entry was
	// shared under; removing the connection cascades to these rows.
	SharedWith *string
}

// JournalPayload is the plaintext shape of a journal entry. Attachment data
// travels inside the encrypted payload so the backend never learns the
// object key's file key.
type JournalPayload struct {
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Attachment *AttachmentRef `json:"attachment,omitempty"`
}

// AttachmentRef points at an encrypted blob in object storage together with
// the one-off key material needed to decrypt it.
type AttachmentRef struct {
	StorageKey string `json:"storage_key"`
	FileKey    []byte `json:"file_key"`
	Nonce      []byte `json:"nonce"`
}

// CheckIn is a daily sobriety check-in. CheckedOn stays plaintext so streaks
// can be computed without decrypting history.
type CheckIn struct {
	ID         string
	CheckedOn  string // YYYY-MM-DD
	Payload    []byte
	Nonce      []byte
	SyncStatus SyncStatus
	RemoteID   *string
	CreatedAt  time.Time
}

// CheckInPayload is the plaintext shape of a check-in.
type CheckInPayload struct {
	Mood      int    `json:"mood"`
	Craving   int    `json:"craving"`
	Gratitude string `json:"gratitude,omitempty"`
}

// Favorite is a saved meeting. The referenced meeting itself is public; the
// fact that the user saved it is private, so the payload is encrypted.
type Favorite struct {
	ID         string
	Payload    []byte
	Nonce      []byte
	SyncStatus SyncStatus
	RemoteID   *string
	CreatedAt  time.Time
}

// FavoritePayload is the plaintext shape of a favorite.
type FavoritePayload struct {
	MeetingID string `json:"meeting_id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
}
