package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/warden/internal/config"
	"github.com/hpungsan/warden/internal/errors"
	"github.com/hpungsan/warden/internal/logger"
	"github.com/hpungsan/warden/internal/mcp"
	"github.com/hpungsan/warden/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, env *config.Env, log *logger.Logger) *cli.App {
	app := &cli.App{
		Name:    "warden",
		Usage:   "Membership screening bot and decision record admin",
		Version: Version,
		Commands: []*cli.Command{
			runCmd(db, cfg, env, log),
			recordsCmd(db, cfg),
			purgeCmd(db),
			mcpCmd(db, cfg),
			versionCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runCmd creates the run command.
func runCmd(db *sql.DB, cfg *config.Config, env *config.Env, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Connect to the gateway and process submissions until interrupted",
		Action: func(c *cli.Context) error {
			if env == nil || env.Token == "" {
				return outputError(errors.NewInvalidRequest("DISCORD_TOKEN is not set"))
			}
			if err := cfg.Validate(); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runGateway(ctx, db, cfg, env.Token, log); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// recordsCmd groups the read-only record commands.
func recordsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "records",
		Usage: "Inspect decision records",
		Subcommands: []*cli.Command{
			listCmd(db),
			showCmd(db),
			lookupCmd(db),
			rolesCmd(db, cfg),
		},
	}
}

// listCmd creates the records list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List decision records, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status: pending|approved|banned|kicked|left"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum records to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Records to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Status: c.String("status"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the records show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the record behind a review card",
		ArgsUsage: "<card-id>",
		Action: func(c *cli.Context) error {
			cardID, err := idArg(c, "card-id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Show(c.Context, db, cardID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// lookupCmd creates the records lookup command.
func lookupCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Show a member's most recent record",
		ArgsUsage: "<user-id>",
		Action: func(c *cli.Context) error {
			userID, err := idArg(c, "user-id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Lookup(c.Context, db, userID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// rolesCmd creates the records roles command.
func rolesCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "roles",
		Usage:     "Preview the roles an approval would grant",
		ArgsUsage: "<card-id>",
		Action: func(c *cli.Context) error {
			cardID, err := idArg(c, "card-id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.PreviewRoles(c.Context, db, cfg.Roles, cardID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete resolved decision records",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if resolved more than N days ago (e.g., 30d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the read-only record tools over MCP stdio",
		Action: func(_ *cli.Context) error {
			if err := mcp.Run(db, cfg, Version); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// versionCmd creates the version command.
func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the build version",
		Action: func(_ *cli.Context) error {
			return outputJSON(map[string]string{"version": Version})
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var wErr *errors.WardenError
	if stderrors.As(err, &wErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", wErr.Code, wErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// idArg reads the first positional argument as a snowflake.
func idArg(c *cli.Context, name string) (int64, error) {
	if c.NArg() < 1 {
		return 0, errors.NewInvalidRequest(name + " is required")
	}
	return ops.ParseID(name, c.Args().First())
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
