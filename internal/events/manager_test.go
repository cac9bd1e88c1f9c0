package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SubscribeReceivesEmitted(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ch, cancel := m.Subscribe()
	defer cancel()

	m.Emit(StateTransition, "agent", map[string]interface{}{"state": "ANALYZING_REQUEST"})

	ev := <-ch
	assert.Equal(t, StateTransition, ev.Type)
	assert.Equal(t, "agent", ev.Module)
	assert.Equal(t, "ANALYZING_REQUEST", ev.Data["state"])
	assert.False(t, ev.Timestamp.IsZero())
}

func TestManager_CancelClosesChannel(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ch, cancel := m.Subscribe()
	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// emitting after cancel must not panic or block
	m.Emit(RunPersisted, "history", nil)
}

func TestManager_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ch, cancel := m.Subscribe()
	defer cancel()

	for i := 0; i < 200; i++ {
		m.Emit(SimulationComplete, "simulator", nil)
	}
	// buffer holds 64; the rest were dropped without blocking the emitter
	require.Len(t, ch, 64)
}
