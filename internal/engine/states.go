package engine

import "fmt"

// State is a step of the sync state machine
type State int

const (
	Idle State = iota
	CheckingStatus
	Pulling
	Conflicted
	Merged
	Staging
	Committing
	Pushing
	Done
	Failed
)

var stateNames = [...]string{
	Idle:           "Idle",
	CheckingStatus: "CheckingStatus",
	Pulling:        "Pulling",
	Conflicted:     "Conflicted",
	Merged:         "Merged",
	Staging:        "Staging",
	Committing:     "Committing",
	Pushing:        "Pushing",
	Done:           "Done",
	Failed:         "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// Failed is reachable from every non-terminal state and is not listed here.
var transitions = map[State][]State{
	Idle:           {CheckingStatus, Staging},
	CheckingStatus: {Pulling, Merged},
	Pulling:        {Conflicted, Merged},
	Conflicted:     {},
	Merged:         {Done, Staging},
	Staging:        {Committing, Pushing, Done},
	Committing:     {Pushing, Done},
	Pushing:        {Done},
}

// CanTransition reports whether the machine may move from one state to another
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == Failed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// machine tracks one pass through the state machine and reports every
// transition to the observer.
type machine struct {
	op       string
	state    State
	history  []State
	observer Observer
}

func newMachine(op string, observer Observer) *machine {
	return &machine{op: op, state: Idle, history: []State{Idle}, observer: observer}
}

// to moves the machine to next. An invalid transition is a programming
// error and panics.
func (m *machine) to(next State) {
	if !CanTransition(m.state, next) {
		panic(fmt.Sprintf("engine: invalid %s transition %s -> %s", m.op, m.state, next))
	}
	from := m.state
	m.state = next
	m.history = append(m.history, next)
	m.observer.Notify(Event{Kind: EventTransition, Op: m.op, From: from, To: next})
}

// fail moves the machine to Failed and returns err unchanged
func (m *machine) fail(err error) error {
	if !m.state.Terminal() {
		m.to(Failed)
	}
	return err
}

func (m *machine) states() []State {
	return append([]State(nil), m.history...)
}
