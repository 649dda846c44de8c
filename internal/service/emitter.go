package service

import (
	"context"
	"sync"
)

// Events emitted to the frontend.
const (
	EventAssetsUpdated  = "assets:updated"
	EventExportStarted  = "export:started"
	EventExportFinished = "export:finished"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from wailsRuntime
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for emitting events to the frontend.
// The desktop app delegates to wailsRuntime.EventsEmit; MCP-only mode drops
// everything.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter is a test-friendly EventEmitter that records all calls. It is
// safe to use from the watcher and scheduler goroutines.
type MockEmitter struct {
	mu     sync.Mutex
	events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, EmittedEvent{Event: event, Data: data})
}

// Events returns a copy of what was emitted so far.
func (m *MockEmitter) Events() []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmittedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	n := 0
	for _, e := range m.Events() {
		if e.Event == event {
			n++
		}
	}
	return n
}
