package tui

import (
	"fmt"

	"vaultsync.dev/vaultsync/internal/engine"
)

// SplogObserver writes engine events to a Splog. Warnings are shown to the
// operator; transitions and progress messages are debug output, since actions
// print the outcome themselves.
type SplogObserver struct {
	Splog *Splog
}

// NewSplogObserver returns an observer logging to splog
func NewSplogObserver(splog *Splog) *SplogObserver {
	return &SplogObserver{Splog: splog}
}

// Notify implements engine.Observer
func (o *SplogObserver) Notify(ev engine.Event) {
	if o == nil || o.Splog == nil {
		return
	}
	switch ev.Kind {
	case engine.EventTransition:
		o.Splog.Debug("[%s] %s -> %s", ev.Op, ev.From, ev.To)
	case engine.EventWarn:
		o.Splog.Warn(ev.Message)
	case engine.EventInfo, engine.EventDebug:
		o.Splog.Debug(fmt.Sprintf("[%s] %s", ev.Op, ev.Message))
	}
}

var _ engine.Observer = (*SplogObserver)(nil)
