package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

// invite generates an invite payload as the sponsee and puts it on the
// clipboard for handing to the prospective sponsor.
func (a *App) invite(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Your name as shown to the sponsor (optional)", os.Stdout)
	if err != nil {
		return err
	}

	payload, err := a.pairingService.CreateInvite(ctx, name)
	if err != nil {
		return err
	}

	fmt.Println("Invite payload (valid 72h, share it with your sponsor):")
	fmt.Println(payload)
	if err := clipboard.WriteAll(payload); err == nil {
		fmt.Println("(copied to clipboard)")
	}

	go a.syncManager.AutoSync(context.Background())
	return nil
}

// accept consumes an invite payload as the sponsor and prints the confirm
// payload to send back.
func (a *App) accept(ctx context.Context) error {
	invitePayload, err := getSimpleText(a.reader, "Paste the invite payload", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Your name as shown to the sponsee (optional)", os.Stdout)
	if err != nil {
		return err
	}

	confirmPayload, err := a.pairingService.ConnectAsSponsor(ctx, invitePayload, name)
	if err != nil {
		return err
	}

	fmt.Println("Connected. Send this confirmation back to complete pairing:")
	fmt.Println(confirmPayload)
	if err := clipboard.WriteAll(confirmPayload); err == nil {
		fmt.Println("(copied to clipboard)")
	}

	go a.syncManager.AutoSync(context.Background())
	return nil
}

// confirm completes the handshake on the sponsee side.
func (a *App) confirm(ctx context.Context) error {
	confirmPayload, err := getSimpleText(a.reader, "Paste the confirmation payload", os.Stdout)
	if err != nil {
		return err
	}

	conn, err := a.pairingService.ConfirmInvite(ctx, confirmPayload)
	if err != nil {
		return err
	}

	name := "your sponsor"
	if conn.DisplayName != nil {
		name = *conn.DisplayName
	}
	fmt.Printf("Paired with %s.\n", name)

	go a.syncManager.AutoSync(context.Background())
	return nil
}

func (a *App) connections(ctx context.Context) error {
	conns, err := a.pairingService.Connections(ctx)
	if err != nil {
		return err
	}
	if len(conns) == 0 {
		fmt.Println("No sponsor connections.")
		return nil
	}
	for _, c := range conns {
		name := "(unnamed)"
		if c.DisplayName != nil {
			name = *c.DisplayName
		}
		fmt.Printf("%s  %s  %s  %s\n", c.ID, c.Role, c.Status, name)
	}
	return nil
}

func (a *App) unpair(ctx context.Context, id string) error {
	if err := a.pairingService.RemoveConnection(ctx, id); err != nil {
		return err
	}
	fmt.Println("Connection removed, shared entries deleted.")

	go a.syncManager.AutoSync(context.Background())
	return nil
}
