// Package backend talks to the hosted sync API. The client ships opaque
// ciphertext records and never sees plaintext content.
package backend

import (
	"context"
	"encoding/json"
)

// Client is the remote API contract the services layer depends on.
// Implementations classify failures so the sync loop can tell recoverable
// network trouble (common.ErrNetwork) from terminal rejections
// (common.ErrValidation).
type Client interface {
	Register(ctx context.Context, username string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) error
	Ping(ctx context.Context) error

	// Upsert creates or replaces one record on the server and returns its
	// server-assigned id. The record body is ciphertext plus sync envelope
	// fields, already marshaled.
	Upsert(ctx context.Context, table string, record json.RawMessage) (string, error)

	// Delete removes a record by its server-assigned id. Deleting an id the
	// server no longer knows is not an error.
	Delete(ctx context.Context, table string, remoteID string) error

	// PresignAttachment returns a storage key and a presigned PUT URL for
	// uploading one encrypted attachment blob.
	PresignAttachment(ctx context.Context) (key string, url string, err error)

	// Tokens and SetTokens expose the current access/refresh pair so callers
	// can persist it across restarts.
	Tokens() (access string, refresh string)
	SetTokens(access string, refresh string)

	Close() error
}

type registerRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type saltRequest struct {
	Username string `json:"username"`
}

type saltResponse struct {
	Salt []byte `json:"salt"`
}

type loginRequest struct {
	Username string `json:"username"`
	Verifier []byte `json:"verifier"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type upsertResponse struct {
	RemoteID string `json:"remote_id"`
}

type presignResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type errorBody struct {
	Error string `json:"error"`
}
