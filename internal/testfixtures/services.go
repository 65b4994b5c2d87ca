package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-availability/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Location    *time.Location
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults. Dates resolve
// in UTC unless WithLocation is used.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Location:    time.UTC,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLocation overrides the time zone used for date keys.
func WithLocation(loc *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = loc
	}
}

// ScheduleServiceDeps captures dependencies for constructing a schedule service.
type ScheduleServiceDeps struct {
	Schedules application.ScheduleRepository
	Activity  application.ActivityRecorder
	Rooms     application.RoomCatalog
	Logger    *slog.Logger
}

// NewScheduleService builds a schedule service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	return application.NewScheduleServiceWithLogger(
		deps.Schedules,
		deps.Activity,
		deps.Rooms,
		f.Location,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		loggerOrDiscard(deps.Logger),
	)
}

// TimelineServiceDeps captures dependencies for constructing a timeline service.
type TimelineServiceDeps struct {
	Rooms     application.RoomLister
	Schedules application.RegistryLoader
	Options   application.TimelineOptions
	Logger    *slog.Logger
}

// NewTimelineService builds a timeline service using the factory clock.
func (f *ServiceFactory) NewTimelineService(deps TimelineServiceDeps) *application.TimelineService {
	return application.NewTimelineService(deps.Rooms, deps.Schedules, f.Location, f.Clock.NowFunc(), deps.Options, loggerOrDiscard(deps.Logger))
}

// NewHarnessServices wires every service against a StoreHarness.
func (f *ServiceFactory) NewHarnessServices(h *StoreHarness) HarnessServices {
	rooms := application.NewRoomServiceWithLogger(h.RoomAdapter, h.RoomTypeAdapter, DiscardLogger())
	return HarnessServices{
		Schedules: f.NewScheduleService(ScheduleServiceDeps{Schedules: h.Registry, Activity: h.ActivityAdapter, Rooms: h.RoomAdapter}),
		Rooms:     rooms,
		RoomTypes: application.NewRoomTypeService(h.RoomTypeAdapter, h.RoomAdapter, f.IDGenerator.NextFunc(), DiscardLogger()),
		Activity:  application.NewActivityService(h.ActivityAdapter, DiscardLogger()),
		Timeline:  f.NewTimelineService(TimelineServiceDeps{Rooms: h.RoomAdapter, Schedules: h.Registry}),
	}
}

// HarnessServices groups the services built by NewHarnessServices.
type HarnessServices struct {
	Schedules *application.ScheduleService
	Rooms     *application.RoomService
	RoomTypes *application.RoomTypeService
	Activity  *application.ActivityService
	Timeline  *application.TimelineService
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return DiscardLogger()
}
