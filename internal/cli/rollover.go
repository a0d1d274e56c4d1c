package cli

import (
	"encoding/json"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/app"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

type RolloverCmd struct {
	Date  string `help:"Day to roll over (YYYY-MM-DD). Defaults to today."`
	Force bool   `help:"Run even if the day was already rolled over."`
}

func (cmd *RolloverCmd) Run(c *Context) error {
	return c.withApp(func(a *app.App) error {
		day := cmd.Date
		if day == "" {
			day = domain.Today(a.Clock)
		}

		report, err := a.Rollover.Run(c.Ctx, day, cmd.Force)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
}
