package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/export"
)

func exportCmd(cli *cliApp) *cobra.Command {
	var out string
	var days, offset int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the timeline as an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := cli.services.timeline.Build(cli.context(cmd), application.TimelineQuery{Days: days, Offset: offset})
			if err != nil {
				return fmt.Errorf("failed to build timeline: %w", err)
			}
			err = cli.writeOutput(cmd, out, func(w io.Writer) error {
				return export.WriteTimelineWorkbook(w, view)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rooms x %d days to %s\n", len(view.Rows), len(view.Days), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "timeline.xlsx", "output file")
	cmd.Flags().IntVar(&days, "days", 0, "number of days (default from config)")
	cmd.Flags().IntVar(&offset, "offset", 0, "first day relative to today")
	return cmd
}

func icsCmd(cli *cliApp) *cobra.Command {
	var room int
	var out string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write one room's schedule as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := cli.services.schedules.GetRoomSchedule(cli.context(cmd), room)
			if err != nil {
				return fmt.Errorf("failed to load room %d: %w", room, err)
			}
			return cli.writeOutput(cmd, out, func(w io.Writer) error {
				return export.WriteRoomCalendar(w, room, result.Entries, cli.location, cli.now())
			})
		},
	}
	cmd.Flags().IntVar(&room, "room", 0, "room number")
	cmd.Flags().StringVar(&out, "out", "-", `output file, "-" for stdout`)
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

// writeOutput renders into path, or to the command's stdout for "-". Files are
// created through the CLI filesystem.
func (c *cliApp) writeOutput(cmd *cobra.Command, path string, render func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		return render(cmd.OutOrStdout())
	}

	f, err := c.fsys.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return render(f)
}
