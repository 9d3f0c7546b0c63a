package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/genpass/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Enable2FA(ctx context.Context) error
	Disable2FA(ctx context.Context) error
	Generate(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
}

var errLoginRequired = errors.New("please log in first")

// runREPL reads commands line by line from reader and dispatches them to a.
// Command errors are reported to the user and the loop continues. It returns
// on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("genpass%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", describe(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn("Available commands: save, get, (l)ist, delete, generate, enable2fa, disable2fa, logout, exit")
		} else {
			printlnFn("Available commands: register, login, generate, exit")
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "generate", "gen":
		return a.Generate(ctx, args)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "enable2fa", "disable2fa", "save", "get", "l", "list", "delete":
			return errLoginRequired
		}
		printlnFn("Unknown command:", cmd)
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "enable2fa":
		return a.Enable2FA(ctx)
	case "disable2fa":
		return a.Disable2FA(ctx)
	case "save":
		return a.Save(ctx, args)
	case "get":
		return a.Get(ctx, args)
	case "l", "list":
		return a.List(ctx)
	case "delete":
		return a.Delete(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

// describe turns a command error into a message for the user.
func describe(err error) string {
	var locked *common.LockedError
	switch {
	case errors.As(err, &locked):
		return fmt.Sprintf("too many failed attempts, try again after %s", locked.Until.Local().Format("15:04"))
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, common.ErrInvalidUsername):
		return "username must be 3-30 letters, digits, '_' or '-'"
	case errors.Is(err, common.ErrInvalidEmail):
		return "invalid email address"
	case errors.Is(err, common.ErrDuplicateUsername):
		return "username already exists"
	case errors.Is(err, common.ErrRateLimited):
		return "please wait a minute before requesting another code"
	case errors.Is(err, common.ErrDecryption):
		return "stored password cannot be decrypted; the key file may have been replaced"
	case errors.Is(err, common.ErrNotification):
		return "could not deliver the verification code: " + err.Error()
	default:
		return err.Error()
	}
}
