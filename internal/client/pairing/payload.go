// Package pairing implements the out-of-band payload codec for sponsor
// pairing. Payloads are versioned JSON wrapped in unpadded base64url so they
// survive clipboards, chat apps and QR codes. Parsing is strict: anything
// structurally off yields common.ErrValidation with a reason.
package pairing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ebergstrom/daybreak/internal/common"
)

// Version is the current payload format version.
const Version = 1

// DefaultInviteTTL is how long a generated invite advertises itself valid.
const DefaultInviteTTL = 72 * time.Hour

const (
	kindInvite  = "invite"
	kindConfirm = "confirm"
)

const publicKeySize = 32

// InvitePayload is generated by the sponsee and handed to the prospective
// sponsor out-of-band.
type InvitePayload struct {
	Kind        string    `json:"t"`
	Version     int       `json:"v"`
	Code        string    `json:"code"`
	SponseeName string    `json:"sponsee_name,omitempty"`
	PublicKey   []byte    `json:"public_key"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ConfirmPayload is the sponsor's reply, carried back to the sponsee.
type ConfirmPayload struct {
	Kind        string    `json:"t"`
	Version     int       `json:"v"`
	Code        string    `json:"code"`
	SponsorName string    `json:"sponsor_name,omitempty"`
	PublicKey   []byte    `json:"public_key"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Expired reports whether the invite's advertised validity window has
// passed as of now.
func (p *InvitePayload) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// EncodeInvite serializes an invite payload to its transportable form.
func EncodeInvite(p *InvitePayload) (string, error) {
	p.Kind = kindInvite
	p.Version = Version
	return encode(p)
}

// EncodeConfirm serializes a confirm payload to its transportable form.
func EncodeConfirm(p *ConfirmPayload) (string, error) {
	p.Kind = kindConfirm
	p.Version = Version
	return encode(p)
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ParseInvite decodes and validates an invite payload string.
func ParseInvite(s string) (*InvitePayload, error) {
	var p InvitePayload
	if err := decode(s, &p); err != nil {
		return nil, err
	}
	if p.Kind != kindInvite {
		return nil, fmt.Errorf("%w: not an invite payload", common.ErrValidation)
	}
	if err := checkCommon(p.Version, p.Code, p.PublicKey); err != nil {
		return nil, err
	}
	if p.CreatedAt.IsZero() || p.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: missing timestamps", common.ErrValidation)
	}
	if !p.ExpiresAt.After(p.CreatedAt) {
		return nil, fmt.Errorf("%w: expiry precedes creation", common.ErrValidation)
	}
	return &p, nil
}

// ParseConfirm decodes and validates a confirm payload string.
func ParseConfirm(s string) (*ConfirmPayload, error) {
	var p ConfirmPayload
	if err := decode(s, &p); err != nil {
		return nil, err
	}
	if p.Kind != kindConfirm {
		return nil, fmt.Errorf("%w: not a confirm payload", common.ErrValidation)
	}
	if err := checkCommon(p.Version, p.Code, p.PublicKey); err != nil {
		return nil, err
	}
	if p.ConfirmedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing confirmation time", common.ErrValidation)
	}
	return &p, nil
}

func decode(s string, v any) error {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: not base64url", common.ErrValidation)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: malformed payload", common.ErrValidation)
	}
	return nil
}

func checkCommon(version int, code string, publicKey []byte) error {
	if version != Version {
		return fmt.Errorf("%w: unsupported version %d", common.ErrValidation, version)
	}
	if code == "" {
		return fmt.Errorf("%w: missing code", common.ErrValidation)
	}
	if len(publicKey) != publicKeySize {
		return fmt.Errorf("%w: bad public key length %d", common.ErrValidation, len(publicKey))
	}
	return nil
}
