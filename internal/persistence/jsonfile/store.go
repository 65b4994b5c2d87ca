// Package jsonfile persists dashboard resources as JSON documents in a data
// directory.
//
// Each resource is one file. Writes to the same resource are serialized and
// land atomically through a temp file and rename; writes to different
// resources are independent. Reads are served from an in-memory cache while
// the file's modification time and size are unchanged.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/example/room-availability/internal/persistence"
)

// Resource file names.
const (
	SchedulesFile   = "schedules.json"
	RoomsFile       = "rooms.json"
	RoomTypesFile   = "roomTypes.json"
	ActivityLogFile = "activityLog.json"
)

type signature struct {
	modTime time.Time
	size    int64
}

func (s signature) key(name string) string {
	return fmt.Sprintf("%s@%d:%d", name, s.modTime.UnixNano(), s.size)
}

type cacheEntry struct {
	sig   signature
	value any
}

// Store is the process-scoped owner of the data directory.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger

	group singleflight.Group

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	cache map[string]cacheEntry
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for cache and write diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a Store rooted at dir on fsys. A nil fsys means the OS
// filesystem.
func NewStore(fsys afero.Fs, dir string, opts ...Option) *Store {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	s := &Store{
		fs:     fsys,
		dir:    dir,
		logger: slog.Default(),
		locks:  make(map[string]*sync.Mutex),
		cache:  make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *Store) cached(name string, sig signature) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[name]
	if !ok || !entry.sig.modTime.Equal(sig.modTime) || entry.sig.size != sig.size {
		return nil, false
	}
	return entry.value, true
}

func (s *Store) remember(name string, sig signature, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[name] = cacheEntry{sig: sig, value: value}
}

func (s *Store) stat(name string) (signature, error) {
	info, err := s.fs.Stat(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return signature{}, fmt.Errorf("%s: %w", name, persistence.ErrNotFound)
		}
		return signature{}, fmt.Errorf("jsonfile: stat %s: %w", name, err)
	}
	return signature{modTime: info.ModTime(), size: info.Size()}, nil
}

// read returns the decoded value of name. Values handed out are shared with
// the cache and must be treated as read-only.
func (s *Store) read(ctx context.Context, name string, decode func([]byte) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig, err := s.stat(name)
	if err != nil {
		return nil, err
	}
	if value, ok := s.cached(name, sig); ok {
		return value, nil
	}

	value, err, _ := s.group.Do(sig.key(name), func() (any, error) {
		data, err := afero.ReadFile(s.fs, s.path(name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", name, persistence.ErrNotFound)
			}
			return nil, fmt.Errorf("jsonfile: read %s: %w", name, err)
		}
		decoded, err := decode(data)
		if err != nil {
			s.logger.Error("resource could not be parsed", slog.String("resource", name), slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w: %v", name, persistence.ErrCorrupt, err)
		}
		s.remember(name, sig, decoded)
		return decoded, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// write must be called with the resource lock held.
func (s *Store) write(name string, data []byte, value any) (err error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: create data dir: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: write %s: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile: close %s: %w", name, err)
	}
	if err = s.fs.Rename(tmpName, s.path(name)); err != nil {
		return fmt.Errorf("jsonfile: replace %s: %w", name, err)
	}

	sig, err := s.stat(name)
	if err != nil {
		return err
	}
	s.remember(name, sig, value)
	s.logger.Debug("resource written", slog.String("resource", name), slog.Int64("size", sig.size))
	return nil
}
