package stream

import "strings"

// Activity is the tool-activity signal exposed to the presentation layer.
// Invariant: Active == false implies Tool == "".
type Activity struct {
	Active bool
	Tool   string
}

// Tracker turns the event stream into an Activity signal.
//
// A Tool event marks the named tool as running; a later Tool event switches
// the displayed name directly, with no idle transition in between. The first
// content event with visible text returns the tracker to idle. Whitespace-only
// content causes no transition, so benign blank chunks between a tool call and
// its answer don't flicker the indicator.
type Tracker struct {
	state Activity
}

// NewTracker returns a tracker in the idle state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Apply advances the state machine with one event and returns the new state.
func (t *Tracker) Apply(ev Event) Activity {
	switch ev.Type {
	case EventTool:
		t.state = Activity{Active: true, Tool: ev.Tool}
	case EventContent:
		if t.state.Active && strings.TrimSpace(ev.Text) != "" {
			t.state = Activity{}
		}
	}
	return t.state
}

// State returns the current activity without advancing it.
func (t *Tracker) State() Activity {
	return t.state
}

// Reset forces the tracker back to idle. Called at end of turn, whether the
// turn succeeded or failed.
func (t *Tracker) Reset() {
	t.state = Activity{}
}
