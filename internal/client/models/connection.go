package models

import "time"

// Role distinguishes the two sides of a sponsor pairing.
type Role string

const (
	RoleSponsee Role = "sponsee"
	RoleSponsor Role = "sponsor"
)

// ConnectionStatus is the pairing state machine. Transitions only go
// pending → connected; sponsor-side rows are created connected.
type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionConnected ConnectionStatus = "connected"
)

// SponsorConnection is one pairing attempt or result.
//
// Invariants maintained by the pairing service:
//   - SharedKey is present iff Status == ConnectionConnected.
//   - PendingPrivateKey is present iff Role == RoleSponsee and
//     Status == ConnectionPending.
//   - PeerPublicKey is set exactly when the row becomes connected.
//
// SharedKey and PendingPrivateKey are content-cipher ciphertext; their
// nonces live in the paired Nonce* columns.
type SponsorConnection struct {
	ID                string
	UserID            string
	Role              Role
	Status            ConnectionStatus
	InviteCode        string
	DisplayName       *string
	OwnPublicKey      []byte
	PeerPublicKey     []byte
	SharedKey         []byte
	NonceSharedKey    []byte
	PendingPrivateKey []byte
	NoncePendingKey   []byte
	SyncStatus        SyncStatus
	RemoteID          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Connected reports whether the pairing completed.
func (c *SponsorConnection) Connected() bool {
	return c.Status == ConnectionConnected
}
