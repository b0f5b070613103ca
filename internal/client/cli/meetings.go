package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

func (a *App) meetings(ctx context.Context) error {
	latStr, err := getSimpleText(a.reader, "Latitude", os.Stdout)
	if err != nil {
		return err
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return fmt.Errorf("latitude must be a number: %w", err)
	}

	lngStr, err := getSimpleText(a.reader, "Longitude", os.Stdout)
	if err != nil {
		return err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return fmt.Errorf("longitude must be a number: %w", err)
	}

	radiusStr, err := getSimpleText(a.reader, "Radius in miles (default 25)", os.Stdout)
	if err != nil {
		return err
	}
	radius := 25
	if radiusStr != "" {
		if radius, err = strconv.Atoi(radiusStr); err != nil {
			return fmt.Errorf("radius must be a number: %w", err)
		}
	}

	found, err := a.meetingService.Find(ctx, lat, lng, radius)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Println("No meetings found in that area.")
		return nil
	}
	for _, m := range found {
		fmt.Printf("%s  %s %s  %s  (%s)\n", m.ID, m.Day, m.Time, m.Name, m.Address)
	}
	return nil
}

func (a *App) favoriteAdd(ctx context.Context) error {
	meetingID, err := getSimpleText(a.reader, "Meeting id", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Name", os.Stdout)
	if err != nil {
		return err
	}
	address, err := getSimpleText(a.reader, "Address (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.favoriteService.Add(ctx, meetingID, name, address); err != nil {
		return err
	}
	fmt.Println("Saved.")

	go a.syncManager.AutoSync(context.Background())
	return nil
}

func (a *App) favoriteList(ctx context.Context) error {
	items, err := a.favoriteService.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No saved meetings.")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  %s  %s (%s)\n", item.ID, item.Name, item.Address, item.SyncStatus)
	}
	return nil
}

func (a *App) favoriteRemove(ctx context.Context, id string) error {
	if err := a.favoriteService.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Println("Removed.")

	go a.syncManager.AutoSync(context.Background())
	return nil
}
