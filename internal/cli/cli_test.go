package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/app"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/cli"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/config"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

func newTestContext(t *testing.T, driver string) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{
		DBDriver:           driver,
		SQLitePath:         filepath.Join(t.TempDir(), "streaks.db"),
		Timezone:           "UTC",
		ReminderMorning:    "08:00",
		ReminderEvening:    "20:00",
		WriteQueueSize:     10,
		RolloverMaxRetries: 0,
	}
	out := &bytes.Buffer{}
	return &cli.Context{
		Ctx:    context.Background(),
		Config: cfg,
		Log:    zap.NewNop(),
		Out:    out,
	}, out
}

// seed creates habits through a short-lived app sharing the context's
// database and marks the named ones done today.
func seed(t *testing.T, c *cli.Context, habits []string, done ...string) {
	t.Helper()

	a, err := app.New(c.Ctx, c.Config, c.Log)
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Close()) }()

	ids := make(map[string]int64)
	for _, name := range habits {
		h, err := a.Dashboard.CreateHabit(c.Ctx, services.CreateHabitInput{Name: name, Description: name + " daily"})
		require.NoError(t, err)
		ids[name] = h.ID
	}
	for _, name := range done {
		_, err := a.Dashboard.Toggle(c.Ctx, ids[name], "")
		require.NoError(t, err)
	}
}

func TestParse(t *testing.T) {
	var root cli.Root
	parser, err := kong.New(&root, kong.Name("streakctl"))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"stats", "completion", "--habit", "Read", "--days", "30"})
	require.NoError(t, err)
	assert.Equal(t, "stats completion", kctx.Command())
	assert.Equal(t, "Read", root.Stats.Completion.Habit)
	assert.Equal(t, 30, root.Stats.Completion.Days)
	assert.Equal(t, "warn", root.LogLevel)

	root = cli.Root{}
	kctx, err = parser.Parse([]string{"rollover", "--date", "2024-01-10", "--force"})
	require.NoError(t, err)
	assert.Equal(t, "rollover", kctx.Command())
	assert.Equal(t, "2024-01-10", root.Rollover.Date)
	assert.True(t, root.Rollover.Force)

	_, err = parser.Parse([]string{"hash-password", "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "hunter2hunter2", root.HashPassword.Password)
}

func TestHashPasswordCmd(t *testing.T) {
	t.Run("from argument", func(t *testing.T) {
		c, out := newTestContext(t, config.DriverMemory)
		cmd := &cli.HashPasswordCmd{Password: "correct horse"}

		require.NoError(t, cmd.Run(c))

		owner := domain.Owner{PasswordHash: strings.TrimSpace(out.String())}
		assert.NoError(t, owner.CheckPassword("correct horse"))
	})

	t.Run("from stdin", func(t *testing.T) {
		c, out := newTestContext(t, config.DriverMemory)
		c.In = strings.NewReader("battery staple\n")
		cmd := &cli.HashPasswordCmd{}

		require.NoError(t, cmd.Run(c))

		owner := domain.Owner{PasswordHash: strings.TrimSpace(out.String())}
		assert.NoError(t, owner.CheckPassword("battery staple"))
	})

	t.Run("too short", func(t *testing.T) {
		c, out := newTestContext(t, config.DriverMemory)
		cmd := &cli.HashPasswordCmd{Password: "short"}

		assert.ErrorIs(t, cmd.Run(c), domain.ErrPasswordTooShort)
		assert.Empty(t, out.String())
	})
}

func TestMigrateCmd(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		c, out := newTestContext(t, config.DriverSQLite)

		require.NoError(t, (&cli.MigrateCmd{}).Run(c))
		assert.Regexp(t, `^schema at version [1-9]\d*\n$`, out.String())
	})

	t.Run("memory", func(t *testing.T) {
		c, out := newTestContext(t, config.DriverMemory)

		require.NoError(t, (&cli.MigrateCmd{}).Run(c))
		assert.Contains(t, out.String(), "no schema to migrate")
	})
}

func TestRolloverCmd(t *testing.T) {
	c, out := newTestContext(t, config.DriverSQLite)
	seed(t, c, []string{"Read", "Walk"})

	cmd := &cli.RolloverCmd{Date: "2024-01-10"}
	require.NoError(t, cmd.Run(c))

	var report domain.RolloverReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "2024-01-10", report.Day)
	assert.False(t, report.Skipped)
	assert.Equal(t, 2, report.SeededHabits)

	out.Reset()
	require.NoError(t, cmd.Run(c))
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.Skipped)

	out.Reset()
	cmd.Force = true
	require.NoError(t, cmd.Run(c))
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.False(t, report.Skipped)
}

func TestStatsCmds(t *testing.T) {
	c, out := newTestContext(t, config.DriverSQLite)
	seed(t, c, []string{"Read", "Walk"}, "Read")

	tests := []struct {
		name string
		cmd  interface{ Run(*cli.Context) error }
		want string
	}{
		{"best streak for habit", &cli.BestStreakCmd{Habit: "Read"}, "best streak: 1\n"},
		{"best streak for idle habit", &cli.BestStreakCmd{Habit: "Walk"}, "best streak: 0\n"},
		{"best streak overall", &cli.BestStreakCmd{}, "best streak: 1\n"},
		{"completion for habit", &cli.CompletionCmd{Habit: "Read", Days: 1}, "100.0%\n"},
		{"completion overall", &cli.CompletionCmd{Days: 1}, "50.0%\n"},
		{"longest streak", &cli.LongestStreakCmd{}, "longest streak: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			require.NoError(t, tt.cmd.Run(c))
			assert.True(t, strings.HasSuffix(out.String(), tt.want), "got %q", out.String())
		})
	}

	t.Run("unknown habit", func(t *testing.T) {
		err := (&cli.BestStreakCmd{Habit: "Swim"}).Run(c)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}
