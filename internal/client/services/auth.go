// Package services contains the application services of the Daybreak client:
// authentication, encrypted record management, the sync outbox, sponsor
// pairing and the meeting cache.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/ebergstrom/daybreak/internal/client/backend"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/cryptox"
	"github.com/ebergstrom/daybreak/internal/dbx"
)

// ErrLocalDataNotAvailable is returned by OfflineLogin when no cached auth
// metadata exists, meaning the user has never logged in online on this
// device.
var ErrLocalDataNotAvailable = errors.New("no local auth data, online login required")

// Metadata keys for cached auth data.
const (
	metaUsername     = "username"
	metaSalt         = "salt"
	metaVerifier     = "verifier"
	metaAccessToken  = "access_token"
	metaRefreshToken = "refresh_token"
)

// AuthService handles registration, online and offline login, and the
// cached auth metadata both depend on.
//
// Contract:
//   - OnlineLogin: authenticate against the server and persist offline auth data.
//   - OfflineLogin: derive and verify credentials against locally cached data.
//   - Register: create a new account on the server.
//   - Ping: check server liveness.
//   - ClearOfflineData: wipe locally cached auth metadata.
//
// Both login paths return the derived master key; the caller owns it and
// wipes it on logout.
type AuthService interface {
	OfflineLogin(ctx context.Context, username string, password []byte) ([]byte, error)
	OnlineLogin(ctx context.Context, username string, password []byte) ([]byte, error)
	Register(ctx context.Context, username string, password []byte) error
	Ping(ctx context.Context) error
	ClearOfflineData(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client backend.Client
	store  *store.Store
}

// NewAuthService constructs an AuthService bound to the given API client and
// local store.
func NewAuthService(client backend.Client, st *store.Store) AuthService {
	return &authService{client: client, store: st}
}

// OfflineLogin derives a master key from the password and the locally cached
// salt, and verifies it against the cached verifier in constant time.
// Returns ErrLocalDataNotAvailable when no metadata is cached and
// common.ErrUnauthorized on a mismatch.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) ([]byte, error) {
	savedUsername, err := a.store.Metadata.Get(ctx, metaUsername)
	if err != nil {
		return nil, err
	}
	if savedUsername == nil {
		return nil, ErrLocalDataNotAvailable
	}
	if string(savedUsername) != username {
		return nil, common.ErrUnauthorized
	}

	savedSalt, err := a.store.Metadata.Get(ctx, metaSalt)
	if err != nil {
		return nil, err
	}
	savedVerifier, err := a.store.Metadata.Get(ctx, metaVerifier)
	if err != nil {
		return nil, err
	}
	if savedSalt == nil || savedVerifier == nil {
		return nil, ErrLocalDataNotAvailable
	}

	masterKeyCandidate := cryptox.DeriveMasterKey(password, savedSalt)
	verifierCandidate := cryptox.MakeVerifier(masterKeyCandidate)

	if subtle.ConstantTimeCompare(savedVerifier, verifierCandidate) == 0 {
		return nil, common.ErrUnauthorized
	}

	// restore the cached token pair so sync can resume without a fresh login
	access, _ := a.store.Metadata.Get(ctx, metaAccessToken)
	refresh, _ := a.store.Metadata.Get(ctx, metaRefreshToken)
	if access != nil || refresh != nil {
		a.client.SetTokens(string(access), string(refresh))
	}

	return masterKeyCandidate, nil
}

// OnlineLogin authenticates against the server, caches offline metadata
// (username, salt, verifier, token pair), and returns the derived master key.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) ([]byte, error) {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get salt error: %w", err)
	}

	masterKeyCandidate := cryptox.DeriveMasterKey(password, salt)
	verifierCandidate := cryptox.MakeVerifier(masterKeyCandidate)

	if err := a.client.Login(ctx, username, verifierCandidate); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.saveOfflineData(ctx, username, salt, verifierCandidate); err != nil {
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}

	return masterKeyCandidate, nil
}

// saveOfflineData persists the metadata offline login needs, in one
// transaction.
func (a *authService) saveOfflineData(ctx context.Context, username string, salt []byte, verifier []byte) error {
	access, refresh := a.client.Tokens()

	return dbx.WithTx(ctx, a.store.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pairs := map[string][]byte{
			metaUsername:     []byte(username),
			metaSalt:         salt,
			metaVerifier:     verifier,
			metaAccessToken:  []byte(access),
			metaRefreshToken: []byte(refresh),
		}
		for key, value := range pairs {
			if err := a.store.Metadata.Set(ctx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Register creates a new account: random salt, argon2id master key, SHA-256
// verifier. Only salt and verifier leave the device.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(32)
	key := cryptox.DeriveMasterKey(password, salt)
	verifier := cryptox.MakeVerifier(key)

	return a.client.Register(ctx, username, salt, verifier)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// ClearOfflineData wipes cached auth metadata, e.g. on logout from a shared
// device.
func (a *authService) ClearOfflineData(ctx context.Context) error {
	return a.store.Metadata.Clear(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
