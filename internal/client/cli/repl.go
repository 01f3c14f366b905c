package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Go(ctx context.Context, args []string) error
	View(ctx context.Context, args []string) error

	Signup(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Demo(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Whoami(ctx context.Context, args []string) error
	Photo(ctx context.Context, args []string) error

	Tell(ctx context.Context, args []string) error
	Claim(ctx context.Context, args []string) error
	Feed(ctx context.Context, args []string) error

	Brands(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Compare(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Fav(ctx context.Context, args []string) error
	Favs(ctx context.Context, args []string) error
	Country(ctx context.Context, args []string) error
	Awards(ctx context.Context, args []string) error
	Trending(ctx context.Context, args []string) error
	Logo(ctx context.Context, args []string) error
	Resolutions(ctx context.Context, args []string) error
	Claims(ctx context.Context, args []string) error
	Subscribe(ctx context.Context, args []string) error

	Onboarding(ctx context.Context, args []string) error
	Tutorial(ctx context.Context, args []string) error
}

const (
	helpBrowse    = "Browse: go <path>, view [name], brands [flags], search <term>, logo <brand>, compare, export csv|json [path], fav <id>, favs, country [code], feed, awards [brand], trending [24h|7d|30d], onboarding"
	helpSignedOut = "Account: signup, verify <link>, resend [email], login, demo [user|brand|admin], exit"
	helpSignedIn  = "Account: tell [type], claim, photo <path>, whoami, tutorial, resolutions [brand], claims, subscribe <ref> <plan>, logout, exit"
)

// runREPL starts the read–eval–print loop of the TellBrandz CLI.
//
// It reads a line from in, parses the first token as the
// command and passes the remaining tokens to the matching method on 'a'.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompts issued by commands read from the same reader, so piped input
// works line by line. Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("tbz %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help":
			printlnFn(helpBrowse)
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "go":
			err = a.Go(ctx, args)
		case "view":
			err = a.View(ctx, args)

		case "signup", "register":
			err = a.Signup(ctx, args)
		case "verify":
			err = a.Verify(ctx, args)
		case "resend":
			err = a.Resend(ctx, args)
		case "login":
			err = a.Login(ctx, args)
		case "demo":
			err = a.Demo(ctx, args)
		case "logout":
			err = a.Logout(ctx, args)
		case "whoami":
			err = a.Whoami(ctx, args)
		case "photo":
			err = a.Photo(ctx, args)

		case "tell":
			err = a.Tell(ctx, args)
		case "claim":
			err = a.Claim(ctx, args)
		case "feed":
			err = a.Feed(ctx, args)

		case "brands", "l", "list":
			err = a.Brands(ctx, args)
		case "search":
			err = a.Search(ctx, args)
		case "compare":
			err = a.Compare(ctx, args)
		case "export":
			err = a.Export(ctx, args)
		case "fav":
			err = a.Fav(ctx, args)
		case "favs":
			err = a.Favs(ctx, args)
		case "country":
			err = a.Country(ctx, args)
		case "awards":
			err = a.Awards(ctx, args)
		case "trending":
			err = a.Trending(ctx, args)
		case "logo":
			err = a.Logo(ctx, args)
		case "resolutions":
			err = a.Resolutions(ctx, args)
		case "claims":
			err = a.Claims(ctx, args)
		case "subscribe":
			err = a.Subscribe(ctx, args)

		case "onboarding":
			err = a.Onboarding(ctx, args)
		case "tutorial":
			err = a.Tutorial(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
