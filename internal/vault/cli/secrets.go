package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/vault/passgen"
)

const defaultLength = 16

func (a *App) siteArg(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getSimpleText(a.reader, "Enter site", a.out)
}

// Save stores a password for a site. An empty password generates a very
// strong one.
func (a *App) Save(ctx context.Context, args []string) error {
	site, err := a.siteArg(args)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password for "+site+" (empty to generate)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	value := string(password)
	if value == "" {
		value, err = a.generator.Generate(defaultLength, passgen.VeryStrong)
		if err != nil {
			return err
		}
		printlnFn("Generated password:", value)
	}

	if err := a.secrets.SaveSecret(ctx, a.account.ID, site, value); err != nil {
		return err
	}
	printlnFn("Saved.")
	return nil
}

func (a *App) Get(ctx context.Context, args []string) error {
	site, err := a.siteArg(args)
	if err != nil {
		return err
	}

	value, ok, err := a.secrets.GetSecret(ctx, a.account.ID, site)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("No password stored for " + site + ".")
		return nil
	}
	printlnFn(site+":", value)
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.secrets.ListSecrets(ctx, a.account.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No stored passwords.")
		return nil
	}
	for _, s := range list {
		printlnFn(fmt.Sprintf("%-32s %s", s.Site, s.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	site, err := a.siteArg(args)
	if err != nil {
		return err
	}
	if err := a.secrets.DeleteSecret(ctx, a.account.ID, site); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}
