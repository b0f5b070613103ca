package cli

import (
	"context"
	"fmt"
)

// sync runs a manual sync pass, bypassing the automatic-trigger backoff.
func (a *App) sync(ctx context.Context) error {
	if err := a.syncManager.TriggerSync(ctx); err != nil {
		return err
	}

	stats, err := a.syncManager.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.LastError != "" {
		fmt.Printf("Sync finished with problems: %s\n", stats.LastError)
		a.syncManager.ClearError()
	} else {
		fmt.Println("Sync complete.")
	}
	if stats.PendingCount > 0 {
		fmt.Printf("%d change(s) still pending.\n", stats.PendingCount)
	}
	return nil
}

func (a *App) status(ctx context.Context) error {
	stats, err := a.syncManager.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("mode: %s\n", a.Mode)
	fmt.Printf("online: %t\n", stats.IsOnline)
	fmt.Printf("pending changes: %d\n", stats.PendingCount)
	fmt.Printf("syncing now: %t\n", stats.IsSyncing)
	if !stats.LastSyncTime.IsZero() {
		fmt.Printf("last sync: %s\n", stats.LastSyncTime.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("last sync: never")
	}
	if stats.LastError != "" {
		fmt.Printf("last error: %s\n", stats.LastError)
	}
	return nil
}
