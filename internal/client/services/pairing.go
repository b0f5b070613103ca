package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/client/pairing"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/cryptox"
	"github.com/ebergstrom/daybreak/internal/keyx"
	"github.com/ebergstrom/daybreak/internal/logging"
)

const inviteCodeBytes = 8

// PairingService runs the out-of-band sponsor pairing protocol. Payload
// strings travel between devices however the users like (chat, QR code);
// this service owns the key agreement and the connection rows.
//
// Key-material invariants it maintains on sponsor_connections:
//   - SharedKey present iff the row is connected.
//   - PendingPrivateKey present iff the row is a pending sponsee invite.
//   - PeerPublicKey set exactly when the row becomes connected.
//
// Secret columns never enter the sync payload; only public keys and status
// leave the device.
type PairingService interface {
	// CreateInvite generates a new invite as the sponsee and returns the
	// payload string to hand to the prospective sponsor.
	CreateInvite(ctx context.Context, sponseeName string) (string, error)

	// ConnectAsSponsor accepts an invite payload on the sponsor's device and
	// returns the confirm payload to hand back.
	ConnectAsSponsor(ctx context.Context, invitePayload, sponsorName string) (string, error)

	// ConfirmInvite completes the handshake on the sponsee's device.
	ConfirmInvite(ctx context.Context, confirmPayload string) (*models.SponsorConnection, error)

	Connections(ctx context.Context) ([]models.SponsorConnection, error)
	RemoveConnection(ctx context.Context, id string) error

	// GetSharedKey decrypts the stored shared secret of a connected pairing.
	GetSharedKey(ctx context.Context, id string) ([]byte, error)
}

type pairingService struct {
	store  *store.Store
	cipher *cryptox.Cipher
	sync   *SyncManager
	userID string
	log    logging.Logger
}

func NewPairingService(st *store.Store, cipher *cryptox.Cipher, sync *SyncManager, userID string, log logging.Logger) PairingService {
	return &pairingService{store: st, cipher: cipher, sync: sync, userID: userID, log: log}
}

// CreateInvite generates a random invite code and a fresh keypair, stores a
// pending sponsee row with the private key encrypted, and returns the
// serialized invite. Several invites may be pending at once; the code ties
// each confirm back to its row.
func (s *pairingService) CreateInvite(ctx context.Context, sponseeName string) (string, error) {
	code, err := common.MakeRandHexString(inviteCodeBytes)
	if err != nil {
		return "", err
	}

	kp, err := keyx.GenerateKeyPair()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(kp.Private)

	encPriv, noncePriv, err := s.cipher.Encrypt(kp.Private)
	if err != nil {
		return "", err
	}

	now := time.Now()
	conn := &models.SponsorConnection{
		ID:                uuid.NewString(),
		UserID:            s.userID,
		Role:              models.RoleSponsee,
		Status:            models.ConnectionPending,
		InviteCode:        code,
		OwnPublicKey:      kp.Public,
		PendingPrivateKey: encPriv,
		NoncePendingKey:   noncePriv,
		SyncStatus:        models.SyncPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Connections.Insert(ctx, conn); err != nil {
		return "", err
	}
	if err := s.sync.Enqueue(ctx, common.TableSponsorConnections, conn.ID, models.OpInsert); err != nil {
		return "", err
	}

	return pairing.EncodeInvite(&pairing.InvitePayload{
		Code:        code,
		SponseeName: sponseeName,
		PublicKey:   kp.Public,
		CreatedAt:   now,
		ExpiresAt:   now.Add(pairing.DefaultInviteTTL),
	})
}

// ConnectAsSponsor parses the invite, derives the shared secret against the
// sponsee's public key, and stores an already-connected sponsor row. Expired
// invites are rejected here, at acceptance time.
func (s *pairingService) ConnectAsSponsor(ctx context.Context, invitePayload, sponsorName string) (string, error) {
	invite, err := pairing.ParseInvite(invitePayload)
	if err != nil {
		return "", err
	}

	now := time.Now()
	if invite.Expired(now) {
		return "", fmt.Errorf("%w: expired at %s", common.ErrInviteExpired, invite.ExpiresAt.Format(time.RFC3339))
	}

	kp, err := keyx.GenerateKeyPair()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(kp.Private)

	secret, err := keyx.SharedSecret(kp.Private, invite.PublicKey)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(secret)

	encSecret, nonceSecret, err := s.cipher.Encrypt(secret)
	if err != nil {
		return "", err
	}

	conn := &models.SponsorConnection{
		ID:             uuid.NewString(),
		UserID:         s.userID,
		Role:           models.RoleSponsor,
		Status:         models.ConnectionConnected,
		InviteCode:     invite.Code,
		OwnPublicKey:   kp.Public,
		PeerPublicKey:  invite.PublicKey,
		SharedKey:      encSecret,
		NonceSharedKey: nonceSecret,
		SyncStatus:     models.SyncPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if invite.SponseeName != "" {
		conn.DisplayName = &invite.SponseeName
	}

	if err := s.store.Connections.Insert(ctx, conn); err != nil {
		return "", err
	}
	if err := s.sync.Enqueue(ctx, common.TableSponsorConnections, conn.ID, models.OpInsert); err != nil {
		return "", err
	}

	return pairing.EncodeConfirm(&pairing.ConfirmPayload{
		Code:        invite.Code,
		SponsorName: sponsorName,
		PublicKey:   kp.Public,
		ConfirmedAt: now,
	})
}

// ConfirmInvite finishes the handshake on the sponsee side: the pending row
// matching the confirm's code is flipped to connected with the shared secret
// derived from its stashed private key. The invite's expiry was the
// sponsor's gate; a confirm that made it back is accepted.
func (s *pairingService) ConfirmInvite(ctx context.Context, confirmPayload string) (*models.SponsorConnection, error) {
	confirm, err := pairing.ParseConfirm(confirmPayload)
	if err != nil {
		return nil, err
	}

	conn, err := s.store.Connections.FindPendingByCode(ctx, s.userID, confirm.Code)
	if err != nil {
		return nil, err
	}

	if conn.PendingPrivateKey == nil {
		return nil, fmt.Errorf("%w: pending connection has no private key", common.ErrState)
	}

	var priv []byte
	if err := s.cipher.Decrypt(conn.PendingPrivateKey, conn.NoncePendingKey, &priv); err != nil {
		return nil, err
	}
	defer common.WipeByteArray(priv)

	secret, err := keyx.SharedSecret(priv, confirm.PublicKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)

	encSecret, nonceSecret, err := s.cipher.Encrypt(secret)
	if err != nil {
		return nil, err
	}

	conn.Status = models.ConnectionConnected
	conn.PeerPublicKey = confirm.PublicKey
	conn.SharedKey = encSecret
	conn.NonceSharedKey = nonceSecret
	conn.PendingPrivateKey = nil
	conn.NoncePendingKey = nil
	conn.SyncStatus = models.SyncPending
	conn.UpdatedAt = time.Now()
	if confirm.SponsorName != "" {
		conn.DisplayName = &confirm.SponsorName
	}

	if err := s.store.Connections.MarkConnected(ctx, conn); err != nil {
		return nil, err
	}
	if err := s.sync.Enqueue(ctx, common.TableSponsorConnections, conn.ID, models.OpUpdate); err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *pairingService) Connections(ctx context.Context) ([]models.SponsorConnection, error) {
	return s.store.Connections.GetAll(ctx, s.userID)
}

// RemoveConnection unpairs: journal entries shared under the connection are
// deleted (locally and remotely) before the connection row itself goes.
func (s *pairingService) RemoveConnection(ctx context.Context, id string) error {
	conn, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}

	// queue remote deletes while the shared rows still exist
	entries, err := s.store.Journal.GetAll(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].SharedWith == nil || *entries[i].SharedWith != conn.ID {
			continue
		}
		if err := s.sync.Enqueue(ctx, common.TableJournalEntries, entries[i].ID, models.OpDelete); err != nil {
			return err
		}
	}

	removed, err := s.store.Journal.DeleteBySharedWith(ctx, conn.ID)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		s.log.Info(ctx, "removed journal entries shared under connection",
			"connection", conn.ID, "count", len(removed))
	}

	if err := s.sync.Enqueue(ctx, common.TableSponsorConnections, conn.ID, models.OpDelete); err != nil {
		return err
	}
	return s.store.Connections.DeleteByID(ctx, conn.ID)
}

func (s *pairingService) GetSharedKey(ctx context.Context, id string) ([]byte, error) {
	conn, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conn.Connected() || conn.SharedKey == nil {
		return nil, fmt.Errorf("%w: connection %s is not established", common.ErrState, id)
	}

	var key []byte
	if err := s.cipher.Decrypt(conn.SharedKey, conn.NonceSharedKey, &key); err != nil {
		return nil, err
	}
	return key, nil
}

// getOwned loads a connection and hides rows belonging to other local users.
func (s *pairingService) getOwned(ctx context.Context, id string) (*models.SponsorConnection, error) {
	conn, err := s.store.Connections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn.UserID != s.userID {
		return nil, common.ErrNotFound
	}
	return conn, nil
}
