package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ebergstrom/daybreak/internal/client/backend"
	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/logging"
)

// DefaultMaxAttempts is how many delivery attempts a queue entry gets before
// it is parked and skipped by subsequent passes.
const DefaultMaxAttempts = 5

const backoffBase = 2 * time.Second
const backoffCap = 5 * time.Minute

// SyncStats is the observable state of the outbox, rendered by the CLI
// status command.
type SyncStats struct {
	PendingCount int
	IsSyncing    bool
	LastSyncTime time.Time
	LastError    string
	IsOnline     bool
}

// SyncManager owns the durable outbox: it enqueues local mutations and
// drains them to the backend in FIFO order.
//
// TriggerSync is single-flight: overlapping triggers collapse into the pass
// already running. Per-entry outcomes never surface as a TriggerSync error;
// they land in SyncStats and the per-record sync_status instead.
type SyncManager struct {
	store       *store.Store
	client      backend.Client
	log         logging.Logger
	maxAttempts int

	// IsOnline in Stats comes from the connectivity watcher; nil means
	// unknown and reports false.
	onlineFn func() bool

	mu        sync.Mutex
	isSyncing bool
	lastSync  time.Time
	lastError string

	// backoff gate for automatic triggers; lastPassBlocked records whether
	// the most recent pass hit the network.
	backoff         retry.Backoff
	nextAuto        time.Time
	lastPassBlocked bool
}

// NewSyncManager wires the manager to the local store and the backend.
// maxAttempts <= 0 selects DefaultMaxAttempts.
func NewSyncManager(st *store.Store, client backend.Client, maxAttempts int, log logging.Logger) *SyncManager {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &SyncManager{
		store:       st,
		client:      client,
		log:         log,
		maxAttempts: maxAttempts,
		backoff:     newSyncBackoff(),
	}
}

func newSyncBackoff() retry.Backoff {
	return retry.WithCappedDuration(backoffCap, retry.NewFibonacci(backoffBase))
}

// SetOnlineFn registers the connectivity probe consulted by Stats.
func (m *SyncManager) SetOnlineFn(fn func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onlineFn = fn
}

// Enqueue records that a local mutation owes the backend a sync. A second
// enqueue for the same record supersedes the first (insert+delete cancel,
// insert+update stays insert, anything+delete becomes delete).
//
// For deletes the record's current remote id is captured here, so callers
// must enqueue the delete before removing the local row.
func (m *SyncManager) Enqueue(ctx context.Context, table, recordID string, op models.Operation) error {
	var remoteID *string
	if op == models.OpDelete {
		id, err := m.store.Records.RemoteID(ctx, table, recordID)
		if err != nil {
			return err
		}
		remoteID = id
	}
	return m.store.Queue.Enqueue(ctx, table, recordID, op, remoteID)
}

// TriggerSync drains the outbox once. It returns an error only when the
// queue itself cannot be read; per-entry failures are recorded in stats.
//
// Outcomes per entry:
//   - success: remote id written back, record marked synced, entry deleted.
//   - network failure: attempts bumped, record marked failed, entry kept,
//     pass aborted (the next entries would hit the same dead link).
//   - expired session: entry kept untouched, pass aborted, "log in again"
//     surfaced in stats.
//   - terminal rejection: record marked failed, entry dropped, message
//     surfaced in stats.
//   - at the attempts cap: skipped and surfaced.
func (m *SyncManager) TriggerSync(ctx context.Context) error {
	m.mu.Lock()
	if m.isSyncing {
		m.mu.Unlock()
		return nil
	}
	m.isSyncing = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.isSyncing = false
		m.mu.Unlock()
	}()

	entries, err := m.store.Queue.All(ctx)
	if err != nil {
		return err
	}

	var parked int
	for _, e := range entries {
		if e.Attempts >= m.maxAttempts {
			parked++
			continue
		}

		err := m.deliver(ctx, &e)
		if err == nil {
			if derr := m.store.Queue.Delete(ctx, e.ID); derr != nil {
				return derr
			}
			continue
		}

		if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired) {
			// the session lapsed, not the entry; it stays owed until the
			// user logs in again
			m.log.Warn(ctx, "sync pass aborted, session expired",
				"table", e.TableName, "record", e.RecordID)
			m.mu.Lock()
			m.lastError = "session expired, log in again"
			m.lastPassBlocked = true
			m.mu.Unlock()
			return nil
		}

		if errors.Is(err, common.ErrNetwork) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			m.log.Warn(ctx, "sync pass aborted, backend unreachable",
				"table", e.TableName, "record", e.RecordID, "error", err)
			_ = m.store.Queue.IncrementAttempts(ctx, e.ID)
			_ = m.store.Records.MarkFailed(ctx, e.TableName, e.RecordID)
			m.mu.Lock()
			m.lastError = "sync interrupted: " + err.Error()
			m.lastPassBlocked = true
			m.mu.Unlock()
			return nil
		}

		// terminal: the backend rejected this entry, retrying cannot help
		m.log.Error(ctx, "record rejected by backend",
			"table", e.TableName, "record", e.RecordID, "operation", e.Operation, "error", err)
		_ = m.store.Records.MarkFailed(ctx, e.TableName, e.RecordID)
		if derr := m.store.Queue.Delete(ctx, e.ID); derr != nil {
			return derr
		}
		m.noteFailure(e.TableName + "/" + e.RecordID + ": " + err.Error())
	}

	m.mu.Lock()
	m.lastSync = time.Now()
	m.lastPassBlocked = false
	m.backoff = newSyncBackoff()
	m.nextAuto = time.Time{}
	if parked > 0 {
		m.lastError = "some changes could not be delivered, check record status"
	}
	m.mu.Unlock()

	return nil
}

// deliver executes one queue entry against the backend.
func (m *SyncManager) deliver(ctx context.Context, e *models.SyncQueueEntry) error {
	if e.Operation == models.OpDelete {
		if e.RemoteID == nil {
			// never reached the server, nothing to delete there
			return nil
		}
		return m.client.Delete(ctx, e.TableName, *e.RemoteID)
	}

	payload, err := m.store.Records.Payload(ctx, e.TableName, e.RecordID)
	if errors.Is(err, common.ErrNotFound) {
		// the local row vanished under the entry; nothing left to send
		return nil
	}
	if err != nil {
		return err
	}

	remoteID, err := m.client.Upsert(ctx, e.TableName, payload)
	if err != nil {
		return err
	}
	return m.store.Records.MarkSynced(ctx, e.TableName, e.RecordID, remoteID)
}

// AutoSync is the entry point for automatic triggers (connectivity recovery,
// post-mutation nudges). Unlike TriggerSync it is gated by an exponential
// backoff window that grows while passes keep failing, so a flapping link
// does not hammer the backend. Manual triggers bypass the gate.
func (m *SyncManager) AutoSync(ctx context.Context) {
	m.mu.Lock()
	if !m.nextAuto.IsZero() && time.Now().Before(m.nextAuto) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.TriggerSync(ctx); err != nil {
		m.log.Error(ctx, "automatic sync failed", "error", err)
	}

	m.mu.Lock()
	if m.lastPassBlocked {
		if d, stop := m.backoff.Next(); !stop {
			m.nextAuto = time.Now().Add(d)
		}
	}
	m.mu.Unlock()
}

func (m *SyncManager) noteFailure(msg string) {
	m.mu.Lock()
	m.lastError = msg
	m.mu.Unlock()
}

// Stats snapshots the observable sync state.
func (m *SyncManager) Stats(ctx context.Context) (*SyncStats, error) {
	pending, err := m.store.Queue.Count(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	online := false
	if m.onlineFn != nil {
		online = m.onlineFn()
	}

	return &SyncStats{
		PendingCount: pending,
		IsSyncing:    m.isSyncing,
		LastSyncTime: m.lastSync,
		LastError:    m.lastError,
		IsOnline:     online,
	}, nil
}

// ClearError acknowledges the surfaced failure message.
func (m *SyncManager) ClearError() {
	m.mu.Lock()
	m.lastError = ""
	m.mu.Unlock()
}
