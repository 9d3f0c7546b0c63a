package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/genpass/internal/filex"
	"github.com/dmitrijs2005/genpass/internal/logging"
	"github.com/dmitrijs2005/genpass/internal/vault/config"
	"github.com/dmitrijs2005/genpass/internal/vault/keystore"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
	"github.com/dmitrijs2005/genpass/internal/vault/notify"
	"github.com/dmitrijs2005/genpass/internal/vault/passgen"
	"github.com/dmitrijs2005/genpass/internal/vault/repositories/lockouts"
	"github.com/dmitrijs2005/genpass/internal/vault/services"
	"github.com/dmitrijs2005/genpass/internal/vault/storage"
	"github.com/dmitrijs2005/genpass/internal/vault/twofactor"
)

const issuer = "GenPass"

type App struct {
	config     *config.Config
	db         *sql.DB
	log        logging.Logger
	vault      services.CredentialVault
	secrets    services.SecretBox
	generator  *passgen.Generator
	challenges *twofactor.ChallengeTable
	lockouts   twofactor.LockoutStore
	notifier   notify.Notifier

	// keyed by lowercased username, reused across logins
	authenticators map[string]*twofactor.Authenticator

	account *models.Account
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the data directory described by c, creating the key, pepper
// and database on first run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(c.LogBackend, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	if _, err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	ks := keystore.New(c.KeyPath(), c.PepperPath())
	key, err := ks.LoadOrCreateKey()
	if err != nil {
		return nil, err
	}
	pepper, err := ks.LoadOrCreatePepper()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, storage.DSN(c.DatabasePath()))
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath(), "error", err)
		return nil, err
	}

	a, err := newApp(ctx, c, db, key, pepper, log, newNotifier(c))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, key, pepper []byte, log logging.Logger, n notify.Notifier) (*App, error) {
	box, err := services.NewSecretBox(db, key, log)
	if err != nil {
		return nil, err
	}

	hasher := services.NewPasswordHasher(pepper, c.Argon2, c.AllowLegacyHashes)
	lr := lockouts.NewSQLiteRepository(db)

	if purged, err := lr.PurgeExpired(ctx, time.Now()); err != nil {
		log.Warn(ctx, "purge expired lockouts", "error", err)
	} else if purged > 0 {
		log.Debug(ctx, "expired lockouts purged", "count", purged)
	}

	return &App{
		config:     c,
		db:         db,
		log:        log,
		vault:      services.NewCredentialVault(db, hasher, log),
		secrets:    box,
		generator:  passgen.New(),
		challenges: twofactor.NewChallengeTable(c.ChallengeTTL),
		lockouts:   lr,
		notifier:   n,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,

		authenticators: make(map[string]*twofactor.Authenticator),
	}, nil
}

func newNotifier(c *config.Config) notify.Notifier {
	if c.SMTP.Server == "" {
		return notify.NewWriterNotifier(os.Stdout)
	}
	return notify.NewSMTPNotifier(c.SMTP.Server, c.SMTP.Port, c.SMTP.SenderEmail, c.SMTP.SenderPassword)
}

func (a *App) totpOptions() twofactor.Options {
	return twofactor.Options{
		Interval:        a.config.TOTPInterval,
		MinGap:          a.config.OTPMinGap,
		MaxAttempts:     a.config.MaxAttempts,
		LockoutDuration: a.config.LockoutDuration,
	}
}

func (a *App) authenticator(username string) (*twofactor.Authenticator, error) {
	key := strings.ToLower(username)
	if auth, ok := a.authenticators[key]; ok {
		return auth, nil
	}
	auth, err := twofactor.New(issuer, key, a.totpOptions(), a.lockouts, a.log)
	if err != nil {
		return nil, err
	}
	a.authenticators[key] = auth
	return auth, nil
}

// Run starts the REPL on the app's input and returns when the user exits or
// input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to GenPass (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() error {
	a.account = nil
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.account != nil
}

func (a *App) status() string {
	if a.account == nil {
		return ""
	}
	return "(" + a.account.Username + ")"
}
