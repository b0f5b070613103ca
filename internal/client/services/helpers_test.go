package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/cryptox"
	"github.com/ebergstrom/daybreak/internal/logging"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestCipher() *cryptox.Cipher {
	return cryptox.NewCipher(cryptox.DeriveMasterKey([]byte("passphrase"), []byte("salt")))
}

// newSponsorCipher is a second device's cipher with its own passphrase.
func newSponsorCipher() *cryptox.Cipher {
	return cryptox.NewCipher(cryptox.DeriveMasterKey([]byte("other passphrase"), []byte("other salt")))
}

func testLogger() logging.Logger {
	return logging.NewTextLogger()
}

// upsertCall is one recorded Upsert invocation.
type upsertCall struct {
	Table  string
	Record map[string]any
}

// fakeBackend implements backend.Client in-process. Error fields, when set,
// are returned by the corresponding method; upserts hand out sequential
// remote ids.
type fakeBackend struct {
	mu sync.Mutex

	upsertErr error
	deleteErr error
	pingErr   error

	// upsertGate, when set, blocks Upsert until the channel is closed;
	// upsertStarted counts calls that reached the gate.
	upsertGate    chan struct{}
	upsertStarted int

	upserts []upsertCall
	deletes []string
	nextID  int

	access  string
	refresh string
}

func (f *fakeBackend) Register(ctx context.Context, username string, salt, verifier []byte) error {
	return nil
}

func (f *fakeBackend) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return []byte("server-salt"), nil
}

func (f *fakeBackend) Login(ctx context.Context, username string, verifier []byte) error {
	f.SetTokens("access", "refresh")
	return nil
}

func (f *fakeBackend) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeBackend) Upsert(ctx context.Context, table string, record json.RawMessage) (string, error) {
	f.mu.Lock()
	gate := f.upsertGate
	f.upsertStarted++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	var doc map[string]any
	if err := json.Unmarshal(record, &doc); err != nil {
		return "", err
	}
	f.upserts = append(f.upserts, upsertCall{Table: table, Record: doc})
	f.nextID++
	return fmt.Sprintf("remote-%d", f.nextID), nil
}

func (f *fakeBackend) Delete(ctx context.Context, table, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, table+"/"+remoteID)
	return nil
}

func (f *fakeBackend) PresignAttachment(ctx context.Context) (string, string, error) {
	return "blob-key", "http://example.invalid/presigned", nil
}

func (f *fakeBackend) Tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeBackend) SetTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = access
	f.refresh = refresh
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) setUpsertErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertErr = err
}

func (f *fakeBackend) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakeBackend) setUpsertGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertGate = gate
}

func (f *fakeBackend) upsertsStarted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upsertStarted
}
