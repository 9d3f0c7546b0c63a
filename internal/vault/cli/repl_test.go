package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Enable2FA(ctx context.Context) error  { return f.record("enable2fa") }
func (f *fakeExec) Disable2FA(ctx context.Context) error { return f.record("disable2fa") }
func (f *fakeExec) Generate(ctx context.Context, args []string) error {
	return f.record("generate", args...)
}
func (f *fakeExec) Save(ctx context.Context, args []string) error { return f.record("save", args...) }
func (f *fakeExec) Get(ctx context.Context, args []string) error  { return f.record("get", args...) }
func (f *fakeExec) List(ctx context.Context) error                { return f.record("list") }
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	return f.record("delete", args...)
}

// capturePrint redirects printlnFn into the returned slice for the duration
// of the test.
func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func runScript(exec execIface, lines ...string) {
	r := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "" }, r)
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrint(t)
	exec := &fakeExec{}

	runScript(exec,
		"help",
		"generate 12 3",
		"login",
		"help",
		"",
		"save example.com",
		"get example.com",
		"l",
		"list",
		"delete example.com",
		"enable2fa",
		"disable2fa",
		"foobar",
		"logout",
		"exit",
		"register",
	)

	assert.Equal(t, []string{
		"generate 12 3", "login", "save example.com", "get example.com", "list", "list",
		"delete example.com", "enable2fa", "disable2fa", "logout",
	}, exec.calls)

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Available commands: register, login, generate, exit")
	assert.Contains(t, joined, "Available commands: save, get")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	out := capturePrint(t)
	exec := &fakeExec{}

	runScript(exec, "save example.com", "list", "nope")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Error: please log in first")
	assert.Contains(t, *out, "Unknown command: nope")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrint(t)
	exec := &fakeExec{}

	runScript(exec, "register")

	assert.Equal(t, []string{"register"}, exec.calls)
}

func TestRunREPL_ReportsErrors(t *testing.T) {
	out := capturePrint(t)
	exec := &fakeExec{err: common.ErrDuplicateUsername}

	runScript(exec, "register", "exit")

	assert.Contains(t, *out, "Error: username already exists")
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	out := capturePrint(t)
	r := bufio.NewReader(strings.NewReader("exit\n"))

	runREPL(context.Background(), &fakeExec{}, func() string { return "(alice)" }, r)

	require.NotEmpty(t, *out)
	assert.Equal(t, "genpass(alice)> ", (*out)[0])
}

func TestDescribe(t *testing.T) {
	until := time.Date(2025, 1, 1, 10, 30, 0, 0, time.Local)

	tests := []struct {
		err  error
		want string
	}{
		{common.ErrInvalidCredentials, "invalid username or password"},
		{fmt.Errorf("wrapped: %w", common.ErrInvalidUsername), "username must be 3-30 letters, digits, '_' or '-'"},
		{common.ErrInvalidEmail, "invalid email address"},
		{common.ErrDuplicateUsername, "username already exists"},
		{common.ErrRateLimited, "please wait a minute before requesting another code"},
		{fmt.Errorf("%w: bad tag", common.ErrDecryption), "stored password cannot be decrypted; the key file may have been replaced"},
		{&common.LockedError{Until: until}, "too many failed attempts, try again after 10:30"},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describe(tt.err))
	}
}
