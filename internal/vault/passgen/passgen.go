// Package passgen generates random site passwords from cumulative character
// classes.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/genpass/internal/common"
)

const (
	MinLength = 1
	MaxLength = 128

	maxRounds = 64
)

const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	Symbols   = `!@#$%^&*(),.?":{}|<>`
)

// Strength selects the character classes. Each level adds one class to the
// previous one.
type Strength int

const (
	Weak       Strength = iota + 1 // lowercase
	Medium                         // + uppercase
	Strong                         // + digits
	VeryStrong                     // + symbols
)

var classes = []string{Lowercase, Uppercase, Digits, Symbols}

func (s Strength) Valid() bool { return s >= Weak && s <= VeryStrong }

func (s Strength) String() string {
	switch s {
	case Weak:
		return "weak"
	case Medium:
		return "medium"
	case Strong:
		return "strong"
	case VeryStrong:
		return "very strong"
	default:
		return fmt.Sprintf("Strength(%d)", int(s))
	}
}

// Classes returns the character classes required by s.
func (s Strength) Classes() []string {
	if !s.Valid() {
		return nil
	}
	return classes[:s]
}

var errExhausted = errors.New("passgen: no valid password after retries")

// Generator draws passwords from a random source. The zero value uses
// crypto/rand.
type Generator struct {
	rand io.Reader
}

func New() *Generator {
	return &Generator{rand: rand.Reader}
}

func (g *Generator) reader() io.Reader {
	if g.rand == nil {
		return rand.Reader
	}
	return g.rand
}

// Generate returns a password of exactly length characters holding at least
// one character of every class required by strength and nothing outside
// them.
func (g *Generator) Generate(length int, strength Strength) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("%w: length must be between %d and %d", common.ErrInvalidArgument, MinLength, MaxLength)
	}
	if !strength.Valid() {
		return "", fmt.Errorf("%w: unknown strength %d", common.ErrInvalidArgument, int(strength))
	}
	if length < int(strength) {
		return "", fmt.Errorf("%w: length %d is too short for %s passwords", common.ErrInvalidArgument, length, strength)
	}

	for range maxRounds {
		pw, err := g.draw(length, strength)
		if err != nil {
			return "", err
		}
		if Satisfies(pw, strength) {
			return pw, nil
		}
	}
	return "", errExhausted
}

func (g *Generator) draw(length int, strength Strength) (string, error) {
	required := strength.Classes()
	pool := strings.Join(required, "")

	out := make([]byte, 0, length)
	for _, class := range required {
		c, err := g.pick(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := g.pick(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	if err := g.shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.reader(), big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}

func (g *Generator) pick(set string) (byte, error) {
	i, err := g.intn(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// shuffle is a Fisher-Yates shuffle.
func (g *Generator) shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

// Satisfies reports whether pw holds every class strength requires and no
// character from outside them.
func Satisfies(pw string, strength Strength) bool {
	required := strength.Classes()
	if required == nil {
		return false
	}
	pool := strings.Join(required, "")
	for _, r := range pw {
		if !strings.ContainsRune(pool, r) {
			return false
		}
	}
	for _, class := range required {
		if !strings.ContainsAny(pw, class) {
			return false
		}
	}
	return true
}

// Generate uses a crypto/rand backed Generator.
func Generate(length int, strength Strength) (string, error) {
	return New().Generate(length, strength)
}
