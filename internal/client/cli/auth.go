package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ebergstrom/daybreak/internal/common"
)

// getSimpleText and getPassword are indirections swapped out in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and passphrase and creates the account.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Println("Account created, you can log in now.")
	return nil
}

// Login tries online login first and falls back to the locally cached
// verifier when the server is unreachable. On success the session services
// are built around the derived master key.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	masterKey, err := a.authService.OnlineLogin(ctx, userName, password)
	if err == nil {
		fmt.Println("Logged in.")
		a.openSession(masterKey, userName)
		a.setMode(ModeOnline)
		a.syncManager.AutoSync(ctx)
		return nil
	}

	if errors.Is(err, common.ErrNetwork) {
		fmt.Println("Server unavailable, trying offline login...")
		masterKey, err = a.authService.OfflineLogin(ctx, userName, password)
		if err != nil {
			fmt.Printf("Offline login failed: %s\n", err)
			a.setMode(ModeDisabled)
			return err
		}
		fmt.Println("Logged in offline, changes will sync when the server is back.")
		a.openSession(masterKey, userName)
		a.setMode(ModeOffline)
		return nil
	}

	fmt.Printf("Login failed: %s\n", err)
	return err
}

// Logout wipes the in-memory key and the session services. Cached offline
// metadata stays so the user can log back in without the network.
func (a *App) Logout(ctx context.Context) error {
	a.closeSession()
	fmt.Println("Logged out.")
	return nil
}
