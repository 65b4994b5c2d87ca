package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/scheduler"
)

// TimelineSheet is the worksheet name used by WriteTimelineWorkbook.
const TimelineSheet = "Timeline"

var fixedColumns = []string{"Room", "Type", "Floor"}

var statusFill = map[scheduler.RoomStatus]string{
	scheduler.StatusAvailable:   "#E2F0D9",
	scheduler.StatusOccupied:    "#F8CBAD",
	scheduler.StatusMaintenance: "#D9D9D9",
	scheduler.StatusCleaning:    "#DDEBF7",
}

// WriteTimelineWorkbook renders view as a workbook with one row per room and
// one column per day.
func WriteTimelineWorkbook(w io.Writer, view application.TimelineView) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	index, err := f.NewSheet(TimelineSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	statusStyles := make(map[scheduler.RoomStatus]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return fmt.Errorf("create %s style: %w", status, err)
		}
		statusStyles[status] = id
	}

	headers := append(append([]string{}, fixedColumns...), view.Days...)
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(TimelineSheet, cell, header); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(TimelineSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header %s: %w", cell, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(TimelineSheet, "A", "C", 10); err != nil {
		return err
	}
	if len(view.Days) > 0 {
		if err := f.SetColWidth(TimelineSheet, "D", lastCol, 13); err != nil {
			return err
		}
	}

	for i, row := range view.Rows {
		r := i + 2
		floor := ""
		if row.Room.Floor != nil {
			floor = strconv.Itoa(*row.Room.Floor)
		}
		fixed := []any{row.Room.Number, row.Room.Type, floor}
		for col, value := range fixed {
			if err := setCell(f, col+1, r, value); err != nil {
				return err
			}
		}
		for day, status := range row.Statuses {
			col := len(fixedColumns) + day + 1
			if err := setCell(f, col, r, string(status)); err != nil {
				return err
			}
			if style, ok := statusStyles[status]; ok {
				cell, _ := excelize.CoordinatesToCellName(col, r)
				if err := f.SetCellStyle(TimelineSheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SetPanes(TimelineSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      len(fixedColumns),
		YSplit:      1,
		TopLeftCell: "D2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(TimelineSheet, cell, value)
}
