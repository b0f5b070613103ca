package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/cryptox"
	"github.com/ebergstrom/daybreak/internal/logging"
)

// FavoriteItem is a decrypted saved meeting.
type FavoriteItem struct {
	ID         string
	MeetingID  string
	Name       string
	Address    string
	SyncStatus models.SyncStatus
}

// FavoriteService manages saved meetings. The meeting data itself is public;
// which meetings the user saved is not, so payloads are encrypted.
type FavoriteService interface {
	Add(ctx context.Context, meetingID, name, address string) (*models.Favorite, error)
	List(ctx context.Context) ([]FavoriteItem, error)
	Remove(ctx context.Context, id string) error
}

type favoriteService struct {
	store  *store.Store
	cipher *cryptox.Cipher
	sync   *SyncManager
	log    logging.Logger
}

func NewFavoriteService(st *store.Store, cipher *cryptox.Cipher, sync *SyncManager, log logging.Logger) FavoriteService {
	return &favoriteService{store: st, cipher: cipher, sync: sync, log: log}
}

func (s *favoriteService) Add(ctx context.Context, meetingID, name, address string) (*models.Favorite, error) {
	ciphertext, nonce, err := s.cipher.Encrypt(models.FavoritePayload{
		MeetingID: meetingID, Name: name, Address: address,
	})
	if err != nil {
		return nil, err
	}

	fav := &models.Favorite{
		ID:         uuid.NewString(),
		Payload:    ciphertext,
		Nonce:      nonce,
		SyncStatus: models.SyncPending,
		CreatedAt:  time.Now(),
	}

	if err := s.store.Favorites.Insert(ctx, fav); err != nil {
		return nil, err
	}
	if err := s.sync.Enqueue(ctx, common.TableFavorites, fav.ID, models.OpInsert); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *favoriteService) List(ctx context.Context) ([]FavoriteItem, error) {
	favorites, err := s.store.Favorites.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]FavoriteItem, 0, len(favorites))
	for i := range favorites {
		f := &favorites[i]
		var payload models.FavoritePayload
		if err := s.cipher.Decrypt(f.Payload, f.Nonce, &payload); err != nil {
			s.log.Warn(ctx, "skipping undecryptable favorite", "id", f.ID, "error", err)
			continue
		}
		items = append(items, FavoriteItem{
			ID:         f.ID,
			MeetingID:  payload.MeetingID,
			Name:       payload.Name,
			Address:    payload.Address,
			SyncStatus: f.SyncStatus,
		})
	}
	return items, nil
}

func (s *favoriteService) Remove(ctx context.Context, id string) error {
	if err := s.sync.Enqueue(ctx, common.TableFavorites, id, models.OpDelete); err != nil {
		return err
	}
	return s.store.Favorites.DeleteByID(ctx, id)
}
