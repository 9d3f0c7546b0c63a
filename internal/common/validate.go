package common

import "regexp"

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,30}$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidUsername reports whether s is 3 to 30 characters of [A-Za-z0-9_-].
func ValidUsername(s string) bool { return usernameRe.MatchString(s) }

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }
