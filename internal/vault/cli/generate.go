package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/vault/passgen"
)

// Generate prints a random password. Usage: generate [length] [strength],
// strength 1 (weak) to 4 (very strong). Defaults are 16 and 4.
func (a *App) Generate(ctx context.Context, args []string) error {
	length, strength := defaultLength, passgen.VeryStrong

	if len(args) > 2 {
		return fmt.Errorf("%w: usage: generate [length] [strength]", common.ErrInvalidArgument)
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: length %q is not a number", common.ErrInvalidArgument, args[0])
		}
		length = n
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: strength %q is not a number", common.ErrInvalidArgument, args[1])
		}
		strength = passgen.Strength(n)
	}

	pw, err := a.generator.Generate(length, strength)
	if err != nil {
		return err
	}
	printlnFn(pw)
	printlnFn(fmt.Sprintf("(%d characters, %s)", len(pw), strength))
	return nil
}
