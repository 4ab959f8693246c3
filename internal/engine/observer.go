package engine

// EventKind distinguishes observer events
type EventKind int

const (
	// EventTransition reports a state machine transition
	EventTransition EventKind = iota
	// EventInfo reports progress worth showing to the operator
	EventInfo
	// EventWarn reports a recoverable condition the operator should know about
	EventWarn
	// EventDebug reports detail useful only when troubleshooting
	EventDebug
)

// Event is a single notification from the engine
type Event struct {
	Kind    EventKind
	Op      string
	From    State
	To      State
	Message string
}

// Observer receives engine events. Implementations must not block.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

// Notify calls f(ev)
func (f ObserverFunc) Notify(ev Event) {
	f(ev)
}

// NopObserver discards every event
type NopObserver struct{}

// Notify does nothing
func (NopObserver) Notify(Event) {}

// MultiObserver fans events out to several observers
type MultiObserver []Observer

// Notify forwards ev to every observer
func (m MultiObserver) Notify(ev Event) {
	for _, o := range m {
		if o != nil {
			o.Notify(ev)
		}
	}
}

func (e *Engine) info(op, msg string) {
	e.observer.Notify(Event{Kind: EventInfo, Op: op, Message: msg})
}

func (e *Engine) warn(op, msg string) {
	e.observer.Notify(Event{Kind: EventWarn, Op: op, Message: msg})
}

func (e *Engine) debug(op, msg string) {
	e.observer.Notify(Event{Kind: EventDebug, Op: op, Message: msg})
}
