package fdkaac

import (
	"context"
	"sync"
)

var (
	defaultMu  sync.Mutex
	defaultLib *Library
)

// Register loads the process-wide default library. It is idempotent: once a
// call succeeds, later calls return nil without loading again and ignore
// their options. A failed call leaves nothing registered, so it can be retried.
//
// Package-level Open and Default fail with ErrNotRegistered until Register
// has succeeded.
func Register(ctx context.Context, opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLib != nil {
		return nil
	}
	lib, err := LoadLibrary(ctx, opts...)
	if err != nil {
		return err
	}
	defaultLib = lib
	return nil
}

// Default returns the library loaded by Register.
func Default() (*Library, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLib == nil {
		return nil, ErrNotRegistered
	}
	return defaultLib, nil
}

// Open opens an encoder from the default library.
func Open(ctx context.Context, modules Modules, maxChannels uint32) (*Encoder, error) {
	lib, err := Default()
	if err != nil {
		return nil, err
	}
	return lib.Open(ctx, modules, maxChannels)
}
