package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ebergstrom/daybreak/internal/client/backend"
	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/cryptox"
	"github.com/ebergstrom/daybreak/internal/logging"
	"github.com/ebergstrom/daybreak/internal/netx"
)

// JournalItem is a decrypted journal entry as rendered to the user.
type JournalItem struct {
	ID         string
	Title      string
	Body       string
	HasFile    bool
	SyncStatus models.SyncStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JournalService manages encrypted journal entries: everything is encrypted
// with the session cipher before it touches the store, and every mutation
// goes through the sync outbox.
type JournalService interface {
	Add(ctx context.Context, title, body, attachmentPath string) (*models.JournalEntry, error)
	List(ctx context.Context) ([]JournalItem, error)
	Get(ctx context.Context, id string) (*JournalItem, error)
	Update(ctx context.Context, id, title, body string) error
	Delete(ctx context.Context, id string) error
}

type journalService struct {
	store  *store.Store
	client backend.Client
	cipher *cryptox.Cipher
	sync   *SyncManager
	log    logging.Logger
}

func NewJournalService(st *store.Store, client backend.Client, cipher *cryptox.Cipher, sync *SyncManager, log logging.Logger) JournalService {
	return &journalService{store: st, client: client, cipher: cipher, sync: sync, log: log}
}

// Add encrypts and stores a new entry and queues its insert. When
// attachmentPath is set the file is encrypted under a one-off key and
// uploaded first; the key material rides inside the encrypted payload.
func (s *journalService) Add(ctx context.Context, title, body, attachmentPath string) (*models.JournalEntry, error) {
	payload := models.JournalPayload{Title: title, Body: body}

	if attachmentPath != "" {
		ref, err := s.stageAttachment(ctx, attachmentPath)
		if err != nil {
			return nil, err
		}
		payload.Attachment = ref
	}

	ciphertext, nonce, err := s.cipher.Encrypt(payload)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &models.JournalEntry{
		ID:         uuid.NewString(),
		Payload:    ciphertext,
		Nonce:      nonce,
		SyncStatus: models.SyncPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Journal.Insert(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.sync.Enqueue(ctx, common.TableJournalEntries, entry.ID, models.OpInsert); err != nil {
		return nil, err
	}
	return entry, nil
}

// stageAttachment encrypts the file and uploads it to object storage via a
// presigned URL. This step needs the backend reachable.
func (s *journalService) stageAttachment(ctx context.Context, path string) (*models.AttachmentRef, error) {
	ef, err := cryptox.EncryptFile(path)
	if err != nil {
		return nil, err
	}

	key, url, err := s.client.PresignAttachment(ctx)
	if err != nil {
		return nil, err
	}

	if err := netx.UploadToPresignedURL(ctx, url, ef.Ciphertext); err != nil {
		return nil, err
	}

	return &models.AttachmentRef{StorageKey: key, FileKey: ef.Key, Nonce: ef.Nonce}, nil
}

// List returns decrypted entries. Rows that fail to decrypt are skipped and
// logged rather than failing the whole listing.
func (s *journalService) List(ctx context.Context) ([]JournalItem, error) {
	entries, err := s.store.Journal.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]JournalItem, 0, len(entries))
	for i := range entries {
		item, err := s.decrypt(&entries[i])
		if err != nil {
			s.log.Warn(ctx, "skipping undecryptable journal entry", "id", entries[i].ID, "error", err)
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *journalService) Get(ctx context.Context, id string) (*JournalItem, error) {
	entry, err := s.store.Journal.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decrypt(entry)
}

func (s *journalService) decrypt(e *models.JournalEntry) (*JournalItem, error) {
	var payload models.JournalPayload
	if err := s.cipher.Decrypt(e.Payload, e.Nonce, &payload); err != nil {
		return nil, err
	}
	return &JournalItem{
		ID:         e.ID,
		Title:      payload.Title,
		Body:       payload.Body,
		HasFile:    payload.Attachment != nil,
		SyncStatus: e.SyncStatus,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}, nil
}

// Update re-encrypts the entry with new content and queues an update.
// An attachment already on the entry is preserved.
func (s *journalService) Update(ctx context.Context, id, title, body string) error {
	entry, err := s.store.Journal.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var payload models.JournalPayload
	if err := s.cipher.Decrypt(entry.Payload, entry.Nonce, &payload); err != nil {
		return err
	}
	payload.Title = title
	payload.Body = body

	ciphertext, nonce, err := s.cipher.Encrypt(payload)
	if err != nil {
		return err
	}

	entry.Payload = ciphertext
	entry.Nonce = nonce
	entry.SyncStatus = models.SyncPending
	entry.UpdatedAt = time.Now()

	if err := s.store.Journal.Update(ctx, entry); err != nil {
		return err
	}
	return s.sync.Enqueue(ctx, common.TableJournalEntries, id, models.OpUpdate)
}

// Delete queues the remote delete (capturing the remote id while the row
// still exists) and then removes the local row.
func (s *journalService) Delete(ctx context.Context, id string) error {
	if err := s.sync.Enqueue(ctx, common.TableJournalEntries, id, models.OpDelete); err != nil {
		return err
	}
	return s.store.Journal.DeleteByID(ctx, id)
}
