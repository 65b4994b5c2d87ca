package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/example/room-availability/internal/adapters"
	"github.com/example/room-availability/internal/application"
	"github.com/example/room-availability/internal/config"
	httptransport "github.com/example/room-availability/internal/http"
	"github.com/example/room-availability/internal/jobs"
	"github.com/example/room-availability/internal/logging"
	"github.com/example/room-availability/internal/persistence/jsonfile"
)

func main() {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	if err := run(ctx, cfg, afero.NewOsFs(), logger); err != nil {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// app holds the wired HTTP handler and background jobs.
type app struct {
	handler   http.Handler
	scheduler *jobs.Scheduler
}

type appOptions struct {
	now         func() time.Time
	idGenerator func() string
}

func newApp(ctx context.Context, cfg config.Config, fsys afero.Fs, logger *slog.Logger, opts appOptions) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve time zone: %w", err)
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}
	idGenerator := opts.idGenerator
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}

	store := jsonfile.NewStore(fsys, cfg.DataDir, jsonfile.WithLogger(logger))

	registry := adapters.NewScheduleRegistry(jsonfile.NewScheduleRepository(store))
	rooms := adapters.NewRooms(jsonfile.NewRoomRepository(store))
	roomTypes := adapters.NewRoomTypes(jsonfile.NewRoomTypeRepository(store))
	activity := adapters.NewActivity(jsonfile.NewActivityLogRepository(store), cfg.ActivityLogLimit)

	scheduleService := application.NewScheduleServiceWithLogger(registry, activity, rooms, loc, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(rooms, roomTypes, logger)
	roomTypeService := application.NewRoomTypeService(roomTypes, rooms, idGenerator, logger)
	activityService := application.NewActivityService(activity, logger)
	timelineService := application.NewTimelineService(rooms, registry, loc, now, application.TimelineOptions{
		DefaultDays: cfg.TimelineDays,
		MaxDays:     cfg.MaxTimelineDays,
	}, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Rooms:     httptransport.NewRoomHandler(roomService, logger),
		RoomTypes: httptransport.NewRoomTypeHandler(roomTypeService, logger),
		Schedules: httptransport.NewScheduleHandler(scheduleService, logger),
		Timeline:  httptransport.NewTimelineHandler(timelineService, logger),
		Activity:  httptransport.NewActivityHandler(activityService, logger),
		Exports:   httptransport.NewExportHandler(scheduleService, timelineService, loc, now, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
		},
	})

	scheduler := jobs.NewScheduler(loc, logger)
	if cfg.RolloverCron != "" {
		rollover := jobs.NewRollover(timelineService, logger)
		err := scheduler.Add(ctx, "rollover", cfg.RolloverCron, func(ctx context.Context) error {
			_, err := rollover.Run(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	return &app{handler: router, scheduler: scheduler}, nil
}

func run(ctx context.Context, cfg config.Config, fsys afero.Fs, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, fsys, logger, appOptions{})
	if err != nil {
		return err
	}

	jobsDone := a.scheduler.Start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room availability API listening", "addr", server.Addr, "data_dir", cfg.DataDir, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-jobsDone
	logger.Info("server stopped")
	return nil
}
