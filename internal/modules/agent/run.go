package agent

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mahbubchula/policysim/internal/events"
)

// run is the state-machine instance for one in-flight request. A new run
// starts per request; runs are never reused after reaching a terminal state.
type run struct {
	id     string
	state  State
	log    []ActionLogEntry
	events *events.Manager
}

func newRun(ev *events.Manager) *run {
	r := &run{
		id:     uuid.NewString(),
		state:  StateIdle,
		events: ev,
	}
	if r.events != nil {
		r.events.Emit(events.RequestReceived, "agent", map[string]interface{}{
			"request_id": r.id,
		})
	}
	r.append(StateIdle, "request accepted")
	return r
}

func (r *run) append(state State, description string) {
	r.log = append(r.log, ActionLogEntry{
		Timestamp:   time.Now(),
		State:       state,
		Description: description,
	})
	if r.events != nil {
		r.events.Emit(events.StateTransition, "agent", map[string]interface{}{
			"request_id":  r.id,
			"state":       string(state),
			"description": description,
		})
	}
}

// transition advances the run along the happy path
func (r *run) transition(to State, description string) error {
	if r.state.IsTerminal() {
		return fmt.Errorf("no transition out of terminal state %s", r.state)
	}
	if validTransitions[r.state] != to {
		return fmt.Errorf("invalid transition %s -> %s", r.state, to)
	}
	r.state = to
	r.append(to, description)
	return nil
}

// fail moves the run to ERROR with the triggering reason recorded.
// Allowed from any non-terminal state.
func (r *run) fail(reason error) {
	if r.state.IsTerminal() {
		return
	}
	from := r.state
	r.state = StateError
	r.append(StateError, reason.Error())
	if r.events != nil {
		r.events.EmitError("agent", reason, map[string]interface{}{
			"request_id": r.id,
			"from_state": string(from),
		})
	}
}
