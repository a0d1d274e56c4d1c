package cli

import (
	"fmt"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/app"
)

type MigrateCmd struct{}

func (cmd *MigrateCmd) Run(c *Context) error {
	store, err := app.OpenStore(c.Ctx, c.Config, c.Log)
	if err != nil {
		return err
	}
	defer store.Close()

	sqlStore, ok := store.(*repository.SQLStore)
	if !ok {
		fmt.Fprintf(c.Out, "%s store has no schema to migrate\n", c.Config.DBDriver)
		return nil
	}

	migrations, err := repository.DialectMigrations(c.Config.DBDriver)
	if err != nil {
		return err
	}
	version, err := repository.NewMigrator(sqlStore.DB(), migrations, c.Log).CurrentVersion(c.Ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "schema at version %d\n", version)
	return nil
}
