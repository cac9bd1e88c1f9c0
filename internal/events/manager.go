// Package events provides the process-wide event bus. Events are logged and
// fanned out to subscribers (the websocket action-log stream); a slow
// subscriber drops events rather than blocking an emitter.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	RequestReceived    EventType = "REQUEST_RECEIVED"
	StateTransition    EventType = "STATE_TRANSITION"
	SimulationComplete EventType = "SIMULATION_COMPLETE"
	ComparisonComplete EventType = "COMPARISON_COMPLETE"
	ExplanationSkipped EventType = "EXPLANATION_SKIPPED"
	RunPersisted       EventType = "RUN_PERSISTED"
	SweepComplete      EventType = "SWEEP_COMPLETE"
	BackupComplete     EventType = "BACKUP_COMPLETE"
	ErrorOccurred      EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Manager handles event emission, logging and subscriber fan-out
type Manager struct {
	log zerolog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:  log.With().Str("service", "events").Logger(),
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a buffered event channel. The returned cancel func
// removes the subscription and closes the channel.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Event, 64)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Emit emits an event
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	eventJSON, _ := json.Marshal(event)
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- event:
		default:
			// subscriber buffer full, drop for this subscriber
		}
	}
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	data := map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	}
	m.Emit(ErrorOccurred, module, data)
}
