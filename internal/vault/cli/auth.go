package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
	"github.com/dmitrijs2005/genpass/internal/vault/twofactor"
)

var (
	errAborted     = errors.New("aborted")
	errInvalidCode = errors.New("invalid or expired verification code")
)

// Register prompts for a username, email and password and creates the
// account. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.vault.Register(ctx, username, password, email); err != nil {
		return err
	}

	printlnFn("Account created. You can now log in.")
	return nil
}

// Login authenticates with username and password. For accounts with 2FA
// enabled it then mails a one-time code to the account email and asks for
// it until it matches, the user gives up with an empty line, or the session
// locks.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.vault.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if acc.TwoFactorEnabled {
		if err := a.secondFactor(ctx, acc); err != nil {
			return err
		}
	}

	a.account = acc
	printlnFn("Welcome, " + acc.Username + "!")
	return nil
}

func (a *App) secondFactor(ctx context.Context, acc *models.Account) error {
	auth, err := a.authenticator(acc.Username)
	if err != nil {
		return err
	}
	if err := auth.CheckLocked(ctx); err != nil {
		return err
	}

	if err := twofactor.SendCode(ctx, auth, a.notifier, acc.Email); err != nil {
		return err
	}
	printlnFn("A verification code was sent to " + acc.Email + ".")

	for {
		code, err := getSimpleText(a.reader, "Enter verification code (empty to cancel)", a.out)
		if err != nil {
			return err
		}
		if code == "" {
			return errAborted
		}

		ok, err := auth.VerifyCode(ctx, code)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		printlnFn("Invalid code, try again.")
	}
}

// Logout forgets the current account.
func (a *App) Logout(ctx context.Context) error {
	a.account = nil
	printlnFn("Logged out.")
	return nil
}

// Enable2FA mails a challenge to the account email and turns 2FA on once
// the user enters it back.
func (a *App) Enable2FA(ctx context.Context) error {
	if a.account.TwoFactorEnabled {
		printlnFn("Two-factor authentication is already enabled.")
		return nil
	}

	email := a.account.Email
	if err := twofactor.SendChallenge(ctx, a.challenges, a.notifier, email); err != nil {
		return err
	}
	printlnFn("A verification code was sent to " + email + ".")

	code, err := getSimpleText(a.reader, "Enter verification code", a.out)
	if err != nil {
		return err
	}

	a.challenges.CleanupExpired()
	if !a.challenges.Verify(email, code) {
		return errInvalidCode
	}

	if err := a.vault.Enable2FA(ctx, a.account.Username); err != nil {
		return err
	}
	a.account.TwoFactorEnabled = true
	printlnFn("Two-factor authentication enabled.")
	return nil
}

// Disable2FA turns 2FA off after the user re-enters the account password.
func (a *App) Disable2FA(ctx context.Context) error {
	if !a.account.TwoFactorEnabled {
		printlnFn("Two-factor authentication is not enabled.")
		return nil
	}

	password, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.vault.GetAccount(ctx, a.account.Username)
	if err != nil {
		return err
	}
	if !a.vault.VerifyPassword(password, acc.PasswordHash) {
		return common.ErrInvalidCredentials
	}

	if err := a.vault.Disable2FA(ctx, a.account.Username); err != nil {
		return err
	}
	a.account.TwoFactorEnabled = false
	printlnFn("Two-factor authentication disabled.")
	return nil
}
