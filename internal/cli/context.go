// Package cli holds the streakctl commands. Each command is a kong node with
// a Run method that receives the shared Context.
package cli

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/app"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/config"
)

type Context struct {
	Ctx    context.Context
	Config *config.Config
	Log    *zap.Logger
	Out    io.Writer
	In     io.Reader
}

// withApp builds the engine, runs fn and closes it again, draining any
// writes fn queued.
func (c *Context) withApp(fn func(a *app.App) error) (err error) {
	a, err := app.New(c.Ctx, c.Config, c.Log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

// Root is the streakctl command tree.
type Root struct {
	EnvFile  string `help:"Path to a .env file." default:".env" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn"`

	Migrate      MigrateCmd      `cmd:"" help:"Apply pending database migrations."`
	Rollover     RolloverCmd     `cmd:"" help:"Reset broken streaks and seed tracking rows for a day."`
	Stats        StatsCmd        `cmd:"" help:"Show streak statistics."`
	HashPassword HashPasswordCmd `cmd:"" help:"Hash the owner password for OWNER_PASSWORD_HASH."`
}
