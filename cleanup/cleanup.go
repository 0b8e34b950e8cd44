// Package cleanup implements scoped resource release for one run.
//
// Every host-side helper resource (delivery endpoint, ISO mount, PID file)
// registers a release action at acquisition time. Release runs the actions
// in reverse acquisition order, on every exit path including interrupt.
// It never touches created domains or disks — cleanup is about not leaking
// host-side helpers, not about rolling back VM creation.
package cleanup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/projecteru2/core/log"
)

// Stack holds the release actions of currently-held resources.
type Stack struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	name    string
	release func(context.Context) error
}

// New creates an empty Stack.
func New() *Stack { return &Stack{} }

// Register records a release action for a newly acquired resource.
func (s *Stack) Register(name string, release func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{name: name, release: release})
}

// Release runs all registered actions in reverse acquisition order and
// clears the stack. Idempotent: a second call is a no-op. Individual
// failures are logged and aggregated; every action still runs.
func (s *Stack) Release(ctx context.Context) error {
	s.mu.Lock()
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	logger := log.WithFunc("cleanup.Release")
	var errs []string
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := e.release(ctx); err != nil {
			logger.Warnf(ctx, "release %s: %v", e.name, err)
			errs = append(errs, fmt.Sprintf("%s: %v", e.name, err))
			continue
		}
		logger.Infof(ctx, "released %s", e.name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Held returns the number of currently registered resources.
func (s *Stack) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
