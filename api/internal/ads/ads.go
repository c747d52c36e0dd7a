// Package ads models the monetization hook as an optional capability. When
// no real provider is installed the no-op gate runs every continuation
// immediately, so callers never branch on availability.
package ads

import (
	"context"
	"sync"
)

// Gate runs a hook before an analysis starts. A real implementation may
// block on an interstitial; done must be called exactly once either way.
type Gate interface {
	BeforeAnalyze(ctx context.Context, done func())
}

// Noop passes straight through.
type Noop struct{}

func (Noop) BeforeAnalyze(_ context.Context, done func()) { done() }

var (
	initOnce sync.Once
	active   Gate = Noop{}
)

// Init installs the provider exactly once per process; later calls and a nil
// provider leave the no-op gate in place.
func Init(g Gate) {
	initOnce.Do(func() {
		if g != nil {
			active = g
		}
	})
}

// Active returns the installed gate.
func Active() Gate { return active }
