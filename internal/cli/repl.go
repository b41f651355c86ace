package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	AddClient(ctx context.Context) error
	ListClients(ctx context.Context, clientType string) error
	ShowClient(ctx context.Context) error
	EditClient(ctx context.Context) error
	DeleteClient(ctx context.Context) error
	LinkOffer(ctx context.Context) error
	UnlinkOffer(ctx context.Context) error
	ListOffers(ctx context.Context) error
	ClientsForOffer(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the agentdesk CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ad> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist [buyer|seller], show, edit, del, link, unlink, offers, matches, sync, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "add":
			_ = a.AddClient(ctx)

		case "l", "list":
			clientType := ""
			if len(args) > 0 {
				clientType = args[0]
			}
			_ = a.ListClients(ctx, clientType)

		case "show":
			_ = a.ShowClient(ctx)

		case "edit":
			_ = a.EditClient(ctx)

		case "del":
			_ = a.DeleteClient(ctx)

		case "link":
			_ = a.LinkOffer(ctx)

		case "unlink":
			_ = a.UnlinkOffer(ctx)

		case "offers":
			_ = a.ListOffers(ctx)

		case "matches":
			_ = a.ClientsForOffer(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
