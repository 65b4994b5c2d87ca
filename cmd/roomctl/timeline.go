package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/scheduler"
)

var statusSymbols = map[scheduler.RoomStatus]string{
	scheduler.StatusAvailable:   ".",
	scheduler.StatusOccupied:    "O",
	scheduler.StatusMaintenance: "M",
	scheduler.StatusCleaning:    "C",
}

func timelineCmd(cli *cliApp) *cobra.Command {
	var days, offset int
	var window string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print a room by day status grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := cli.services.timeline.Build(cli.context(cmd), application.TimelineQuery{
				Days:   days,
				Offset: offset,
				Window: window,
			})
			if err != nil {
				return fmt.Errorf("failed to build timeline: %w", err)
			}
			return printTimeline(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "number of days to show (default from config)")
	cmd.Flags().IntVar(&offset, "offset", 0, "first day relative to today")
	cmd.Flags().StringVar(&window, "window", "", "preset window: week, month or two-months")
	return cmd
}

func printTimeline(out io.Writer, view application.TimelineView) error {
	tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)

	header := []string{"ROOM"}
	for _, day := range view.Days {
		header = append(header, day[5:])
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range view.Rows {
		cells := []string{fmt.Sprint(row.Room.Number)}
		for _, status := range row.Statuses {
			cells = append(cells, statusSymbols[status])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d rooms from %s (today %s). . available  O occupied  M maintenance  C cleaning\n",
		len(view.Rows), view.StartDate, view.Today)
	return nil
}
