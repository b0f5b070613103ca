package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the REPL until exit or EOF.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to Daybreak (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	_ = a.Login(ctx)

	go a.watcher.Run(ctx)

	for {
		fmt.Printf("daybreak %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		if err := a.dispatch(ctx, cmd, args); err != nil {
			fmt.Println("Error:", err)
		}
		if cmd == "exit" || cmd == "quit" {
			return
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		a.printHelp()
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "exit", "quit":
		fmt.Println("Bye!")
		return nil
	}

	if !a.isLoggedIn() {
		fmt.Println("Log in first (type 'login').")
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "journal":
		return a.journalAdd(ctx)
	case "list":
		return a.journalList(ctx)
	case "show":
		if len(args) == 0 {
			fmt.Println("Usage: show <id>")
			return nil
		}
		return a.journalShow(ctx, args[0])
	case "delete":
		if len(args) == 0 {
			fmt.Println("Usage: delete <id>")
			return nil
		}
		return a.journalDelete(ctx, args[0])
	case "checkin":
		return a.checkIn(ctx)
	case "checkins":
		return a.checkInList(ctx)
	case "meetings":
		return a.meetings(ctx)
	case "fave":
		return a.favoriteAdd(ctx)
	case "faves":
		return a.favoriteList(ctx)
	case "unfave":
		if len(args) == 0 {
			fmt.Println("Usage: unfave <id>")
			return nil
		}
		return a.favoriteRemove(ctx, args[0])
	case "invite":
		return a.invite(ctx)
	case "accept":
		return a.accept(ctx)
	case "confirm":
		return a.confirm(ctx)
	case "connections":
		return a.connections(ctx)
	case "unpair":
		if len(args) == 0 {
			fmt.Println("Usage: unpair <id>")
			return nil
		}
		return a.unpair(ctx, args[0])
	case "sync":
		return a.sync(ctx)
	case "status":
		return a.status(ctx)
	default:
		fmt.Println("Unknown command:", cmd)
		return nil
	}
}

func (a *App) printHelp() {
	if !a.isLoggedIn() {
		fmt.Println("Available commands: register, login, exit")
		return
	}
	fmt.Println(`Available commands:
  journal | list | show <id> | delete <id>
  checkin | checkins
  meetings | fave | faves | unfave <id>
  invite | accept | confirm | connections | unpair <id>
  sync | status | logout | exit`)
}
