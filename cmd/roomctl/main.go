// Command roomctl inspects and exports the dashboard data directory without
// running the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/example/room-availability/internal/adapters"
	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/config"
	"github.com/example/room-availability/internal/logging"
	"github.com/example/room-availability/internal/persistence/jsonfile"
)

// errFindings marks a command that ran but found problems. main exits with
// status 1 without printing usage.
var errFindings = errors.New("problems found")

func main() {
	logger := logging.New(os.Stderr, "text", os.Getenv("DASHBOARD_LOG_LEVEL"))
	cli := &cliApp{fsys: afero.NewOsFs(), now: time.Now, logger: logger}

	if err := newRootCmd(cli).Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// cliApp holds the dependencies shared by every subcommand. Services are built
// in the root command's pre-run once flags are parsed.
type cliApp struct {
	fsys   afero.Fs
	now    func() time.Time
	logger *slog.Logger

	dataDir  string
	timezone string

	cfg       config.Config
	location  *time.Location
	schedules *jsonfile.ScheduleRepository
	services  cliServices
}

type cliServices struct {
	schedules *application.ScheduleService
	timeline  *application.TimelineService
}

func newRootCmd(cli *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "roomctl",
		Short:         "Inspect and export room availability data",
		Long:          "roomctl reads the dashboard data directory directly to print timelines, check schedules for problems and export calendars or spreadsheets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&cli.dataDir, "data-dir", "", "data directory (default from DASHBOARD_DATA_DIR or ./data)")
	root.PersistentFlags().StringVar(&cli.timezone, "timezone", "", "IANA time zone used for dates (default from DASHBOARD_TIMEZONE or Local)")

	root.AddCommand(timelineCmd(cli))
	root.AddCommand(checkCmd(cli))
	root.AddCommand(exportCmd(cli))
	root.AddCommand(icsCmd(cli))
	return root
}

func (c *cliApp) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = c.dataDir
	}
	if cmd.Flags().Changed("timezone") {
		cfg.Timezone = c.timezone
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid time zone %q: %w", cfg.Timezone, err)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}

	store := jsonfile.NewStore(c.fsys, cfg.DataDir, jsonfile.WithLogger(c.logger))
	c.cfg = cfg
	c.location = loc
	c.schedules = jsonfile.NewScheduleRepository(store)

	registry := adapters.NewScheduleRegistry(c.schedules)
	rooms := adapters.NewRooms(jsonfile.NewRoomRepository(store))
	activity := adapters.NewActivity(jsonfile.NewActivityLogRepository(store), cfg.ActivityLogLimit)

	c.services = cliServices{
		schedules: application.NewScheduleServiceWithLogger(registry, activity, rooms, loc, nil, c.now, c.logger),
		timeline: application.NewTimelineService(rooms, registry, loc, c.now, application.TimelineOptions{
			DefaultDays: cfg.TimelineDays,
			MaxDays:     cfg.MaxTimelineDays,
		}, c.logger),
	}
	return nil
}

func (c *cliApp) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
