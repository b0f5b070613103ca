package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/cryptox"
	"github.com/ebergstrom/daybreak/internal/logging"
)

const dateLayout = "2006-01-02"

// CheckInItem is a decrypted daily check-in.
type CheckInItem struct {
	ID         string
	CheckedOn  string
	Mood       int
	Craving    int
	Gratitude  string
	SyncStatus models.SyncStatus
}

// CheckInService records one check-in per calendar day. The date column is
// plaintext so streaks can be computed without decrypting history.
type CheckInService interface {
	CheckIn(ctx context.Context, mood, craving int, gratitude string) (*models.CheckIn, error)
	List(ctx context.Context) ([]CheckInItem, error)
	Streak(ctx context.Context, now time.Time) (int, error)
}

type checkInService struct {
	store  *store.Store
	cipher *cryptox.Cipher
	sync   *SyncManager
	log    logging.Logger
}

func NewCheckInService(st *store.Store, cipher *cryptox.Cipher, sync *SyncManager, log logging.Logger) CheckInService {
	return &checkInService{store: st, cipher: cipher, sync: sync, log: log}
}

// CheckIn stores today's check-in. A second check-in on the same day yields
// common.ErrState.
func (s *checkInService) CheckIn(ctx context.Context, mood, craving int, gratitude string) (*models.CheckIn, error) {
	if mood < 1 || mood > 10 || craving < 1 || craving > 10 {
		return nil, fmt.Errorf("%w: mood and craving must be between 1 and 10", common.ErrValidation)
	}

	now := time.Now()
	date := now.Format(dateLayout)

	switch _, err := s.store.CheckIns.GetByDate(ctx, date); {
	case err == nil:
		return nil, fmt.Errorf("%w: already checked in on %s", common.ErrState, date)
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	ciphertext, nonce, err := s.cipher.Encrypt(models.CheckInPayload{
		Mood: mood, Craving: craving, Gratitude: gratitude,
	})
	if err != nil {
		return nil, err
	}

	checkIn := &models.CheckIn{
		ID:         uuid.NewString(),
		CheckedOn:  date,
		Payload:    ciphertext,
		Nonce:      nonce,
		SyncStatus: models.SyncPending,
		CreatedAt:  now,
	}

	if err := s.store.CheckIns.Insert(ctx, checkIn); err != nil {
		return nil, err
	}
	if err := s.sync.Enqueue(ctx, common.TableCheckIns, checkIn.ID, models.OpInsert); err != nil {
		return nil, err
	}
	return checkIn, nil
}

// List returns decrypted check-ins, most recent first. Undecryptable rows
// are skipped and logged.
func (s *checkInService) List(ctx context.Context) ([]CheckInItem, error) {
	checkIns, err := s.store.CheckIns.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]CheckInItem, 0, len(checkIns))
	for i := range checkIns {
		c := &checkIns[i]
		var payload models.CheckInPayload
		if err := s.cipher.Decrypt(c.Payload, c.Nonce, &payload); err != nil {
			s.log.Warn(ctx, "skipping undecryptable check-in", "id", c.ID, "error", err)
			continue
		}
		items = append(items, CheckInItem{
			ID:         c.ID,
			CheckedOn:  c.CheckedOn,
			Mood:       payload.Mood,
			Craving:    payload.Craving,
			Gratitude:  payload.Gratitude,
			SyncStatus: c.SyncStatus,
		})
	}
	return items, nil
}

// Streak counts consecutive checked-in days ending today, or ending
// yesterday when today's check-in has not happened yet.
func (s *checkInService) Streak(ctx context.Context, now time.Time) (int, error) {
	checkIns, err := s.store.CheckIns.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	days := make(map[string]bool, len(checkIns))
	for _, c := range checkIns {
		days[c.CheckedOn] = true
	}

	day := now
	if !days[day.Format(dateLayout)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format(dateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}
