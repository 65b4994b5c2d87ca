package testfixtures

import (
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"

	"github.com/example/room-availability/internal/adapters"
	"github.com/example/room-availability/internal/persistence/jsonfile"
)

// HarnessDataDir is the data directory used inside the in-memory filesystem.
const HarnessDataDir = "/data"

// StoreHarness provides repository access backed by a JSON store on an
// in-memory filesystem.
type StoreHarness struct {
	FS    afero.Fs
	Store *jsonfile.Store

	Schedules *jsonfile.ScheduleRepository
	Rooms     *jsonfile.RoomRepository
	RoomTypes *jsonfile.RoomTypeRepository
	Activity  *jsonfile.ActivityLogRepository

	Registry        *adapters.ScheduleRegistry
	RoomAdapter     *adapters.Rooms
	RoomTypeAdapter *adapters.RoomTypes
	ActivityAdapter *adapters.Activity
}

// NewStoreHarness constructs a StoreHarness. activityLimit bounds the
// activity log; zero keeps everything.
func NewStoreHarness(tb testing.TB, activityLimit int) *StoreHarness {
	tb.Helper()

	fsys := afero.NewMemMapFs()
	store := jsonfile.NewStore(fsys, HarnessDataDir, jsonfile.WithLogger(DiscardLogger()))

	h := &StoreHarness{
		FS:        fsys,
		Store:     store,
		Schedules: jsonfile.NewScheduleRepository(store),
		Rooms:     jsonfile.NewRoomRepository(store),
		RoomTypes: jsonfile.NewRoomTypeRepository(store),
		Activity:  jsonfile.NewActivityLogRepository(store),
	}
	h.Registry = adapters.NewScheduleRegistry(h.Schedules)
	h.RoomAdapter = adapters.NewRooms(h.Rooms)
	h.RoomTypeAdapter = adapters.NewRoomTypes(h.RoomTypes)
	h.ActivityAdapter = adapters.NewActivity(h.Activity, activityLimit)
	return h
}

// ReadFile returns the raw contents of a resource file.
func (h *StoreHarness) ReadFile(tb testing.TB, name string) string {
	tb.Helper()
	data, err := afero.ReadFile(h.FS, HarnessDataDir+"/"+name)
	if err != nil {
		tb.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// WriteFile replaces a resource file behind the store's back.
func (h *StoreHarness) WriteFile(tb testing.TB, name, contents string) {
	tb.Helper()
	if err := afero.WriteFile(h.FS, HarnessDataDir+"/"+name, []byte(contents), 0o644); err != nil {
		tb.Fatalf("failed to write %s: %v", name, err)
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
