package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/room-availability/internal/adapters"
	"github.com/example/room-availability/internal/persistence"
	"github.com/example/room-availability/internal/scheduler"
)

// overlapPair is two entries of one room whose ranges intersect.
type overlapPair struct {
	Room   int
	First  scheduler.StatusEntry
	Second scheduler.StatusEntry
}

func checkCmd(cli *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report malformed and overlapping schedule entries",
		Long:  "check loads schedules.json, reports records dropped while loading and lists every pair of overlapping entries. It exits with status 1 when anything is found.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, report, err := cli.schedules.Inspect(cli.context(cmd))
			if err != nil {
				return fmt.Errorf("failed to load schedules: %w", err)
			}

			overlaps := findOverlaps(adapters.ToRegistry(stored))
			printCheck(cmd.OutOrStdout(), report, overlaps)
			if hasFindings(report, overlaps) {
				return errFindings
			}
			return nil
		},
	}
}

func findOverlaps(registry scheduler.Registry) []overlapPair {
	var pairs []overlapPair
	for _, room := range registry.Rooms() {
		entries := scheduler.Normalize(registry.RoomEntries(room))
		for i, first := range entries {
			for _, second := range entries[i+1:] {
				if _, ok := scheduler.FindOverlap([]scheduler.StatusEntry{second}, first.StartDate, first.EndDate); ok {
					pairs = append(pairs, overlapPair{Room: room, First: first, Second: second})
				}
			}
		}
	}
	return pairs
}

func hasFindings(report persistence.LoadReport, overlaps []overlapPair) bool {
	return report.DroppedEntries > 0 || len(report.DroppedRooms) > 0 || report.DroppedFields > 0 || len(overlaps) > 0
}

func printCheck(out io.Writer, report persistence.LoadReport, overlaps []overlapPair) {
	fmt.Fprintf(out, "dropped entries: %d\n", report.DroppedEntries)
	fmt.Fprintf(out, "dropped rooms: %d\n", len(report.DroppedRooms))
	for _, key := range report.DroppedRooms {
		fmt.Fprintf(out, "  - %q\n", key)
	}
	fmt.Fprintf(out, "dropped fields: %d\n", report.DroppedFields)
	fmt.Fprintf(out, "overlapping pairs: %d\n", len(overlaps))
	for _, pair := range overlaps {
		fmt.Fprintf(out, "  - room %d: %s %s..%s (%s) overlaps %s %s..%s (%s)\n",
			pair.Room,
			pair.First.Status, pair.First.StartDate, pair.First.EndDate, pair.First.ID,
			pair.Second.Status, pair.Second.StartDate, pair.Second.EndDate, pair.Second.ID,
		)
	}
}
