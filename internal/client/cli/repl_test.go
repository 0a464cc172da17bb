package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeExec) isLoggedIn() bool               { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Profile(context.Context) error          { return f.record("profile") }
func (f *fakeExec) Me(_ context.Context, force bool) error { return f.record("me %v", force) }
func (f *fakeExec) Prefs(context.Context) error            { return f.record("prefs") }
func (f *fakeExec) Events(_ context.Context, c string, force bool) error {
	return f.record("events %s %v", c, force)
}
func (f *fakeExec) Show(_ context.Context, id string, force bool) error {
	return f.record("show %s %v", id, force)
}
func (f *fakeExec) Watch(_ context.Context, id string) error  { return f.record("watch %s", id) }
func (f *fakeExec) Create(context.Context) error              { return f.record("create") }
func (f *fakeExec) Edit(_ context.Context, id string) error   { return f.record("edit %s", id) }
func (f *fakeExec) Delete(_ context.Context, id string) error { return f.record("delete %s", id) }
func (f *fakeExec) Like(_ context.Context, id string) error   { return f.record("like %s", id) }
func (f *fakeExec) Unlike(_ context.Context, id string) error { return f.record("unlike %s", id) }
func (f *fakeExec) Cover(_ context.Context, id, path string) error {
	return f.record("cover %s %s", id, path)
}
func (f *fakeExec) Export(_ context.Context, path string) error { return f.record("export %s", path) }
func (f *fakeExec) Refresh(context.Context) error               { return f.record("refresh") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)

	input := strings.Join([]string{
		"login",
		"events",
		"events near -f",
		"show e1",
		"show e1 -f",
		"me -f",
		"watch",
		"watch e1",
		"create",
		"edit e1",
		"delete e1",
		"like e1",
		"unlike e1",
		"cover e1 ./cover.png",
		"export out.ics",
		"refresh",
		"profile",
		"prefs",
		"logout",
		"exit",
		"events",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login",
		"events all false",
		"events near true",
		"show e1 false",
		"show e1 true",
		"me true",
		"watch ",
		"watch e1",
		"create",
		"edit e1",
		"delete e1",
		"like e1",
		"unlike e1",
		"cover e1 ./cover.png",
		"export out.ics",
		"refresh",
		"profile",
		"prefs",
		"logout",
	}, exec.calls)
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("events\nfoobar\nhelp\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Please log in first")
	assert.Contains(t, *out, "Unknown command:foobar")
	assert.Contains(t, *out, helpAnonymous)
}

func TestRunREPL_UsageErrors(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("show\ncover e1\nquit\n")))

	assert.Empty(t, exec.calls)
	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "show <id> [-f]")
	assert.Contains(t, joined, "cover <id> <file>")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("refresh")))

	assert.Equal(t, []string{"refresh"}, exec.calls)
}

func TestParseCommand(t *testing.T) {
	c, ok := parseCommand("  SHOW  e1  --force ")
	assert.True(t, ok)
	assert.Equal(t, command{name: "show", args: []string{"e1"}, force: true}, c)

	_, ok = parseCommand("   ")
	assert.False(t, ok)
}
