package jsonfile

import (
	"context"
	"errors"

	"github.com/example/room-availability/internal/persistence"
)

// Resource is a typed view of one file in a Store.
type Resource[T any] struct {
	store  *Store
	name   string
	decode func([]byte) (T, error)
	encode func(T) ([]byte, error)
}

// NewResource binds a file name to its codec.
func NewResource[T any](store *Store, name string, decode func([]byte) (T, error), encode func(T) ([]byte, error)) *Resource[T] {
	return &Resource[T]{store: store, name: name, decode: decode, encode: encode}
}

// Name returns the file name backing the resource.
func (r *Resource[T]) Name() string {
	return r.name
}

// Read returns the current value. A missing file yields persistence.ErrNotFound
// and an unparsable one persistence.ErrCorrupt.
func (r *Resource[T]) Read(ctx context.Context) (T, error) {
	value, err := r.store.read(ctx, r.name, func(data []byte) (any, error) {
		return r.decode(data)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// Write replaces the stored value, waiting for any in-flight write to the
// same resource first.
func (r *Resource[T]) Write(ctx context.Context, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := r.encode(value)
	if err != nil {
		return err
	}

	l := r.store.lock(r.name)
	l.Lock()
	defer l.Unlock()
	return r.store.write(r.name, data, value)
}

// Update reads, transforms and writes the resource while holding its write
// lock. fn receives the zero value and false when the file does not exist.
// If fn fails nothing is written.
func (r *Resource[T]) Update(ctx context.Context, fn func(current T, found bool) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	l := r.store.lock(r.name)
	l.Lock()
	defer l.Unlock()

	current, err := r.Read(ctx)
	found := true
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			return zero, err
		}
		found = false
	}

	next, err := fn(current, found)
	if err != nil {
		return zero, err
	}
	data, err := r.encode(next)
	if err != nil {
		return zero, err
	}
	if err := r.store.write(r.name, data, next); err != nil {
		return zero, err
	}
	return next, nil
}
