package evergreen

import "sync/atomic"

// ModeChange describes a completed transition. It is published on
// ModeChangedEvent after the machine has switched.
type ModeChange struct {
	From, To Mode
	// Manual is true when the change came from the keyboard rather than
	// the gesture classifier.
	Manual bool
}

// ModeMachine owns the current mode. It has a single writer (the frame
// loop) and any number of readers; Current never observes a torn value.
type ModeMachine struct {
	current  atomic.Int32
	bus      *eventBus
	onChange []func(ModeChange)
}

// NewModeMachine creates a machine in ModeTree. bus may be nil.
func NewModeMachine(bus *eventBus) *ModeMachine {
	m := &ModeMachine{bus: bus}
	m.current.Store(int32(ModeTree))
	return m
}

// Current returns the active mode.
func (m *ModeMachine) Current() Mode {
	return Mode(m.current.Load())
}

// OnChange registers a callback invoked synchronously after each
// transition, before the event is queued on the bus.
func (m *ModeMachine) OnChange(fn func(ModeChange)) {
	m.onChange = append(m.onChange, fn)
}

// Apply feeds a classifier signal. It transitions immediately when the
// signal names a mode other than the current one and reports whether a
// transition happened. Invalid signals are ignored.
func (m *ModeMachine) Apply(sig Signal) bool {
	if !sig.Valid {
		return false
	}
	return m.transition(sig.Mode, false)
}

// Set switches to mode from a manual control. Same semantics as Apply.
func (m *ModeMachine) Set(mode Mode) bool {
	return m.transition(mode, true)
}

func (m *ModeMachine) transition(to Mode, manual bool) bool {
	from := m.Current()
	if from == to {
		return false
	}
	m.current.Store(int32(to))

	change := ModeChange{From: from, To: to, Manual: manual}
	for _, fn := range m.onChange {
		fn(change)
	}
	if m.bus != nil {
		m.bus.modeChanged(change)
	}
	return true
}
