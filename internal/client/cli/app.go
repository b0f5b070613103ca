// Package cli is the interactive Daybreak client: a small REPL over the
// local store, the sync outbox and the pairing protocol.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/ebergstrom/daybreak/internal/client/backend"
	"github.com/ebergstrom/daybreak/internal/client/config"
	"github.com/ebergstrom/daybreak/internal/client/directory"
	"github.com/ebergstrom/daybreak/internal/client/services"
	"github.com/ebergstrom/daybreak/internal/client/store"
	"github.com/ebergstrom/daybreak/internal/client/watcher"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/cryptox"
	"github.com/ebergstrom/daybreak/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// App holds everything the REPL needs. Services that depend on the session
// cipher (journal, check-ins, favorites, pairing) are built at login time.
type App struct {
	config  *config.Config
	store   *store.Store
	client  backend.Client
	log     logging.Logger
	watcher *watcher.Watcher

	authService    services.AuthService
	syncManager    *services.SyncManager
	meetingService services.MeetingService

	journalService  services.JournalService
	checkInService  services.CheckInService
	favoriteService services.FavoriteService
	pairingService  services.PairingService

	masterKey []byte
	userName  string
	Mode      Mode
	reader    *bufio.Reader
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	st, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	apiClient := backend.NewHTTPClient(c.ServerEndpointURL)

	a := &App{
		config:         c,
		store:          st,
		client:         apiClient,
		log:            log,
		authService:    services.NewAuthService(apiClient, st),
		syncManager:    services.NewSyncManager(st, apiClient, c.SyncMaxAttempts, log),
		meetingService: services.NewMeetingService(st, directory.New(c.MeetingDirectoryURL), log),
		reader:         bufio.NewReader(os.Stdin),
	}

	a.watcher = watcher.New(apiClient, c.OnlineCheckInterval, log)
	a.watcher.OnOnline(func() {
		a.setMode(ModeOnline)
		if a.isLoggedIn() {
			a.syncManager.AutoSync(context.Background())
		}
	})
	a.syncManager.SetOnlineFn(a.watcher.Online)

	return a, nil
}

// openSession builds the cipher-bound services once a master key exists.
func (a *App) openSession(masterKey []byte, userName string) {
	a.masterKey = masterKey
	a.userName = userName

	cipher := cryptox.NewCipher(masterKey)
	a.journalService = services.NewJournalService(a.store, a.client, cipher, a.syncManager, a.log)
	a.checkInService = services.NewCheckInService(a.store, cipher, a.syncManager, a.log)
	a.favoriteService = services.NewFavoriteService(a.store, cipher, a.syncManager, a.log)
	a.pairingService = services.NewPairingService(a.store, cipher, a.syncManager, userName, a.log)
}

func (a *App) closeSession() {
	common.WipeByteArray(a.masterKey)
	a.masterKey = nil
	a.userName = ""
	a.journalService = nil
	a.checkInService = nil
	a.favoriteService = nil
	a.pairingService = nil
}

func (a *App) isLoggedIn() bool {
	return a.masterKey != nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		fmt.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	defer a.authService.Close(ctx)
	a.Root(ctx)
}
