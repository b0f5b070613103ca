package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

func (a *App) checkIn(ctx context.Context) error {
	moodStr, err := getSimpleText(a.reader, "Mood today (1-10)", os.Stdout)
	if err != nil {
		return err
	}
	mood, err := strconv.Atoi(moodStr)
	if err != nil {
		return fmt.Errorf("mood must be a number: %w", err)
	}

	cravingStr, err := getSimpleText(a.reader, "Craving level (1-10)", os.Stdout)
	if err != nil {
		return err
	}
	craving, err := strconv.Atoi(cravingStr)
	if err != nil {
		return fmt.Errorf("craving must be a number: %w", err)
	}

	gratitude, err := getSimpleText(a.reader, "One thing you are grateful for (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.checkInService.CheckIn(ctx, mood, craving, gratitude); err != nil {
		return err
	}

	streak, err := a.checkInService.Streak(ctx, time.Now())
	if err == nil {
		fmt.Printf("Checked in. Current streak: %d day(s).\n", streak)
	} else {
		fmt.Println("Checked in.")
	}

	go a.syncManager.AutoSync(context.Background())
	return nil
}

func (a *App) checkInList(ctx context.Context) error {
	items, err := a.checkInService.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No check-ins yet.")
		return nil
	}
	for _, item := range items {
		line := fmt.Sprintf("%s  mood %d, craving %d", item.CheckedOn, item.Mood, item.Craving)
		if item.Gratitude != "" {
			line += "  grateful for: " + item.Gratitude
		}
		fmt.Println(line)
	}
	return nil
}
