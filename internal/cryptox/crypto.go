// Package cryptox implements the content cipher: AES-GCM over JSON-encoded
// values, with master keys derived from the user passphrase via argon2id.
// Every encrypted column in the local store is a (ciphertext, nonce) pair
// produced here; plaintext never reaches the database.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ebergstrom/daybreak/internal/common"
	"golang.org/x/crypto/argon2"
)

// DeriveMasterKey stretches a passphrase into a 32-byte AES key using
// argon2id with the stored per-user salt.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns a hash of the master key suitable for storing locally
// and comparing on offline login. The key itself is never persisted.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// Encrypt serializes v to JSON and encrypts it using AES-GCM with a fresh
// random 12-byte nonce. The ciphertext and nonce are returned separately,
// matching the paired columns in the local store.
func Encrypt(v any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt reverses Encrypt, unmarshaling the decrypted JSON into v.
// Tampered ciphertext or a wrong key yields common.ErrCrypto.
func Decrypt(ciphertext, nonce, key []byte, v any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	return json.Unmarshal(plaintext, v)
}

// Cipher is the content-cipher collaborator handed to services. It carries
// the session master key so callers never touch key material directly.
type Cipher struct {
	key []byte
}

// NewCipher wraps a derived master key. The caller keeps ownership of the
// slice and is responsible for wiping it on logout.
func NewCipher(key []byte) *Cipher {
	return &Cipher{key: key}
}

func (c *Cipher) Encrypt(v any) (ciphertext, nonce []byte, err error) {
	return Encrypt(v, c.key)
}

func (c *Cipher) Decrypt(ciphertext, nonce []byte, v any) error {
	return Decrypt(ciphertext, nonce, c.key, v)
}

// EncryptedFile is the staging result for an attachment upload: the file
// encrypted under a random one-off key. Key and nonce travel inside the
// owning record's encrypted payload, not alongside the blob.
type EncryptedFile struct {
	Ciphertext []byte
	Key        []byte
	Nonce      []byte
}

// EncryptFile reads path and encrypts its contents under a fresh random key.
func EncryptFile(path string) (*EncryptedFile, error) {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	key := common.GenerateRandByteArray(32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return &EncryptedFile{Ciphertext: ciphertext, Key: key, Nonce: nonce}, nil
}
