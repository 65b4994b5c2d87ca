package http

import (
	"net/http"
	"strconv"
	"strings"
)

type RouterConfig struct {
	Rooms      *RoomHandler
	RoomTypes  *RoomTypeHandler
	Schedules  *ScheduleHandler
	Timeline   *TimelineHandler
	Activity   *ActivityHandler
	Exports    *ExportHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	if cfg.Rooms != nil {
		mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.List(w, r)
			case http.MethodPost:
				cfg.Rooms.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/rooms/", func(w http.ResponseWriter, r *http.Request) {
			number, ok := parseRoomNumber(strings.TrimPrefix(r.URL.Path, "/api/rooms/"))
			if !ok {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithRoomNumber(r.Context(), number))
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.Get(w, r)
			case http.MethodPut:
				cfg.Rooms.Update(w, r)
			case http.MethodDelete:
				cfg.Rooms.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.RoomTypes != nil {
		mux.HandleFunc("/api/room-types", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.RoomTypes.List(w, r)
			case http.MethodPost:
				cfg.RoomTypes.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/room-types/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/room-types/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithRoomTypeID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.RoomTypes.Update(w, r)
			case http.MethodDelete:
				cfg.RoomTypes.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Schedules != nil {
		mux.HandleFunc("/api/schedules", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.List(w, r)
		})
		mux.HandleFunc("/api/schedules/", func(w http.ResponseWriter, r *http.Request) {
			routeSchedule(cfg, w, r)
		})
	}

	if cfg.Timeline != nil {
		mux.HandleFunc("/api/timeline", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Timeline.Get(w, r)
		})
	}

	if cfg.Exports != nil {
		mux.HandleFunc("/api/timeline.xlsx", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Exports.TimelineWorkbook(w, r)
		})
	}

	if cfg.Activity != nil {
		mux.HandleFunc("/api/activity", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Activity.List(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

// routeSchedule dispatches /api/schedules/{room}[/...] paths.
func routeSchedule(cfg RouterConfig, w http.ResponseWriter, r *http.Request) {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/schedules/"), "/"), "/")
	number, ok := parseRoomNumber(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := ContextWithRoomNumber(r.Context(), number)
	rest := segments[1:]

	switch {
	case len(rest) == 0:
		r = r.WithContext(ctx)
		switch r.Method {
		case http.MethodGet:
			cfg.Schedules.Get(w, r)
		case http.MethodPut:
			cfg.Schedules.Replace(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	case len(rest) == 1 && rest[0] == "entries":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		cfg.Schedules.AddEntry(w, r.WithContext(ctx))
	case len(rest) == 2 && rest[0] == "entries" && rest[1] != "":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, http.MethodDelete)
			return
		}
		cfg.Schedules.RemoveEntry(w, r.WithContext(ContextWithEntryID(ctx, rest[1])))
	case len(rest) == 2 && rest[0] == "days" && rest[1] != "":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, http.MethodPut)
			return
		}
		cfg.Schedules.SetDay(w, r.WithContext(ContextWithDate(ctx, rest[1])))
	case len(rest) == 1 && rest[0] == "recurring":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		cfg.Schedules.ApplyRecurring(w, r.WithContext(ctx))
	case len(rest) == 1 && rest[0] == "calendar.ics" && cfg.Exports != nil:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg.Exports.RoomCalendar(w, r.WithContext(ctx))
	default:
		http.NotFound(w, r)
	}
}

func parseRoomNumber(raw string) (int, bool) {
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return 0, false
	}
	return number, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
