// Package cli is the interactive terminal front end of genpass.
//
// NewApp builds every vault component from a config.Config: the key store,
// the SQLite database, the credential vault, the secret box, the two-factor
// machinery and the notifier. Run then starts a read-eval-print loop.
//
// Commands available before login:
//
//	register                     create an account
//	login                        authenticate (with the emailed code when 2FA is on)
//	generate [length] [strength] print a random password
//	help, exit
//
// Commands available after login:
//
//	save <site>     store a password for site (empty input generates one)
//	get <site>      print the stored password
//	list            list sites with stored passwords
//	delete <site>   remove the stored password
//	enable2fa       confirm the account email and turn on 2FA
//	disable2fa      turn off 2FA after re-entering the password
//	logout
package cli
