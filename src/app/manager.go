package app

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Module is one surface of the process: the HTTP listener or the Discord gateway.
type Module interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context)
}

// Manager runs the surfaces a Stack was built with. Modules start in the order they
// were added and stop in the opposite order.
type Manager struct {
	mu      sync.Mutex
	queued  []Module
	running []Module // non-nil once Start succeeded
}

func NewManager(mods ...Module) *Manager {
	m := &Manager{}
	for _, mod := range mods {
		if mod != nil {
			m.queued = append(m.queued, mod)
		}
	}
	return m
}

// Add queues mod. The set is frozen once Start has been called.
func (m *Manager) Add(mod Module) error {
	if mod == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running != nil {
		return fmt.Errorf("app: %s added after start", mod.Name())
	}
	m.queued = append(m.queued, mod)
	return nil
}

// Start brings every queued module up. On the first failure the modules already up
// are stopped again and the failure is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running != nil {
		return fmt.Errorf("app: already running")
	}

	up := make([]Module, 0, len(m.queued))
	for _, mod := range m.queued {
		if err := mod.Start(ctx); err != nil {
			stopAll(ctx, up)
			return fmt.Errorf("start %s: %w", mod.Name(), err)
		}
		log.Printf("app: %s up", mod.Name())
		up = append(up, mod)
	}
	m.running = up
	return nil
}

// Stop takes the running modules down. Calling it before Start, or twice, does nothing.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stopAll(ctx, m.running)
	m.running = nil
}

func stopAll(ctx context.Context, mods []Module) {
	for i := len(mods) - 1; i >= 0; i-- {
		mods[i].Stop(ctx)
		log.Printf("app: %s down", mods[i].Name())
	}
}

// Names lists the queued modules in start order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.queued))
	for _, mod := range m.queued {
		out = append(out, mod.Name())
	}
	return out
}
