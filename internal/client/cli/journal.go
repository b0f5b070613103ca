package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) journalAdd(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	body, err := GetMultiline(a.reader, "Entry", os.Stdout)
	if err != nil {
		return err
	}
	attachment, err := getSimpleText(a.reader, "Attachment file path (leave empty for none)", os.Stdout)
	if err != nil {
		return err
	}

	entry, err := a.journalService.Add(ctx, title, body, attachment)
	if err != nil {
		return err
	}
	fmt.Printf("Saved entry %s\n", entry.ID)

	go a.syncManager.AutoSync(context.Background())
	return nil
}

func (a *App) journalList(ctx context.Context) error {
	items, err := a.journalService.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No journal entries yet.")
		return nil
	}
	for _, item := range items {
		marker := ""
		if item.HasFile {
			marker = " [file]"
		}
		fmt.Printf("%s  %s  %s%s (%s)\n",
			item.ID, item.CreatedAt.Format("2006-01-02"), item.Title, marker, item.SyncStatus)
	}
	return nil
}

func (a *App) journalShow(ctx context.Context, id string) error {
	item, err := a.journalService.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n\n%s\n", item.Title, item.CreatedAt.Format("2006-01-02 15:04"), item.Body)
	return nil
}

func (a *App) journalDelete(ctx context.Context, id string) error {
	if err := a.journalService.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted.")

	go a.syncManager.AutoSync(context.Background())
	return nil
}
