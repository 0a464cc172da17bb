package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// ErrUsage reports a command invoked with the wrong arguments.
var ErrUsage = errors.New("usage")

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Me(ctx context.Context, force bool) error
	Prefs(ctx context.Context) error
	Events(ctx context.Context, category string, force bool) error
	Show(ctx context.Context, id string, force bool) error
	Watch(ctx context.Context, id string) error
	Create(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, id string) error
	Unlike(ctx context.Context, id string) error
	Cover(ctx context.Context, id, path string) error
	Export(ctx context.Context, path string) error
	Refresh(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, exit"
	helpSignedIn  = "Available commands: me [-f], profile, prefs, events [all|near|forme|soon|liked|created] [-f], " +
		"show <id> [-f], watch [<id>], create, edit <id>, delete <id>, like <id>, unlike <id>, " +
		"cover <id> <file>, export <file.ics>, refresh, logout, exit"
)

// command is one parsed input line.
type command struct {
	name  string
	args  []string
	force bool
}

func parseCommand(line string) (command, bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return command{}, false
	}
	c := command{name: strings.ToLower(parts[0])}
	for _, p := range parts[1:] {
		if p == "-f" || p == "--force" {
			c.force = true
			continue
		}
		c.args = append(c.args, p)
	}
	return c, true
}

func (c command) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// Handlers report their own failures; an error returned here is printed
// and the loop carries on. Commands other than register, login and help
// require a signed-in session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ev %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		cmd, ok := parseCommand(line)
		if !ok {
			continue
		}

		switch cmd.name {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		}

		if !a.isLoggedIn() {
			if isKnown(cmd.name) {
				printlnFn("Please log in first")
			} else {
				printlnFn("Unknown command:", cmd.name)
			}
			continue
		}

		report(dispatch(ctx, a, cmd))
	}
}

var signedInCommands = map[string]struct{}{
	"logout": {}, "profile": {}, "me": {}, "prefs": {}, "events": {}, "show": {},
	"watch": {}, "create": {}, "edit": {}, "delete": {}, "like": {}, "unlike": {},
	"cover": {}, "export": {}, "refresh": {},
}

func isKnown(name string) bool {
	_, ok := signedInCommands[name]
	return ok
}

func dispatch(ctx context.Context, a execIface, cmd command) error {
	needs := func(n int, usage string) error {
		if len(cmd.args) < n {
			return fmt.Errorf("%w: %s", ErrUsage, usage)
		}
		return nil
	}

	switch cmd.name {
	case "logout":
		return a.Logout(ctx)
	case "profile":
		return a.Profile(ctx)
	case "me":
		return a.Me(ctx, cmd.force)
	case "prefs":
		return a.Prefs(ctx)
	case "events":
		category := cmd.arg(0)
		if category == "" {
			category = "all"
		}
		return a.Events(ctx, category, cmd.force)
	case "show":
		if err := needs(1, "show <id> [-f]"); err != nil {
			return err
		}
		return a.Show(ctx, cmd.arg(0), cmd.force)
	case "watch":
		return a.Watch(ctx, cmd.arg(0))
	case "create":
		return a.Create(ctx)
	case "edit":
		if err := needs(1, "edit <id>"); err != nil {
			return err
		}
		return a.Edit(ctx, cmd.arg(0))
	case "delete":
		if err := needs(1, "delete <id>"); err != nil {
			return err
		}
		return a.Delete(ctx, cmd.arg(0))
	case "like":
		if err := needs(1, "like <id>"); err != nil {
			return err
		}
		return a.Like(ctx, cmd.arg(0))
	case "unlike":
		if err := needs(1, "unlike <id>"); err != nil {
			return err
		}
		return a.Unlike(ctx, cmd.arg(0))
	case "cover":
		if err := needs(2, "cover <id> <file>"); err != nil {
			return err
		}
		return a.Cover(ctx, cmd.arg(0), cmd.arg(1))
	case "export":
		if err := needs(1, "export <file.ics>"); err != nil {
			return err
		}
		return a.Export(ctx, cmd.arg(0))
	case "refresh":
		return a.Refresh(ctx)
	default:
		printlnFn("Unknown command:", cmd.name)
		return nil
	}
}

func report(err error) {
	if err != nil {
		printlnFn("error:", err)
	}
}
