package pairing

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/keyx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeInvite(t *testing.T) *InvitePayload {
	t.Helper()
	kp, err := keyx.GenerateKeyPair()
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	return &InvitePayload{
		Code:        "A7KQ2M",
		SponseeName: "Sam",
		PublicKey:   kp.Public,
		CreatedAt:   now,
		ExpiresAt:   now.Add(DefaultInviteTTL),
	}
}

func TestInvite_RoundTrip(t *testing.T) {
	in := makeInvite(t)

	s, err := EncodeInvite(in)
	require.NoError(t, err)

	out, err := ParseInvite(s)
	require.NoError(t, err)
	assert.Equal(t, in.Code, out.Code)
	assert.Equal(t, in.SponseeName, out.SponseeName)
	assert.Equal(t, in.PublicKey, out.PublicKey)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
}

func TestConfirm_RoundTrip(t *testing.T) {
	kp, err := keyx.GenerateKeyPair()
	require.NoError(t, err)
	in := &ConfirmPayload{
		Code:        "A7KQ2M",
		SponsorName: "Jordan",
		PublicKey:   kp.Public,
		ConfirmedAt: time.Now().UTC().Truncate(time.Second),
	}

	s, err := EncodeConfirm(in)
	require.NoError(t, err)

	out, err := ParseConfirm(s)
	require.NoError(t, err)
	assert.Equal(t, in.Code, out.Code)
	assert.Equal(t, in.SponsorName, out.SponsorName)
	assert.Equal(t, in.PublicKey, out.PublicKey)
}

func TestParseInvite_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not base64", "%%%"},
		{"not json", base64.RawURLEncoding.EncodeToString([]byte("hello"))},
		{"empty payload", base64.RawURLEncoding.EncodeToString([]byte("{}"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInvite(tt.in)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestParseInvite_RejectsConfirmPayload(t *testing.T) {
	kp, err := keyx.GenerateKeyPair()
	require.NoError(t, err)
	s, err := EncodeConfirm(&ConfirmPayload{Code: "X", PublicKey: kp.Public, ConfirmedAt: time.Now()})
	require.NoError(t, err)

	_, err = ParseInvite(s)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestParseInvite_BadPublicKey(t *testing.T) {
	in := makeInvite(t)
	in.PublicKey = []byte("short")
	s, err := EncodeInvite(in)
	require.NoError(t, err)

	_, err = ParseInvite(s)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestParseInvite_ExpiryBeforeCreation(t *testing.T) {
	in := makeInvite(t)
	in.ExpiresAt = in.CreatedAt.Add(-time.Hour)
	s, err := EncodeInvite(in)
	require.NoError(t, err)

	_, err = ParseInvite(s)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestInvite_Expired(t *testing.T) {
	in := makeInvite(t)
	assert.False(t, in.Expired(time.Now()))
	assert.True(t, in.Expired(time.Now().Add(DefaultInviteTTL+time.Hour)))
}
