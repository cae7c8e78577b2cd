package evergreen

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ModeChangedEvent is published after every mode transition. Subscribe in
// the session's World to drive labels, sounds, or metrics.
var ModeChangedEvent = events.NewEventType[ModeChange]()

// PhotoAddedEvent is published after a photo particle is appended.
var PhotoAddedEvent = events.NewEventType[PhotoAdded]()

// PhotoAdded carries the new particle and where the image came from.
type PhotoAdded struct {
	ID     ParticleID
	Source PhotoSource
	Label  string
}

// eventBus queues session events in a Donburi world. Events are delivered
// once per frame by process, after the motion pass.
type eventBus struct {
	world donburi.World
}

func newEventBus(world donburi.World) *eventBus {
	if world == nil {
		world = donburi.NewWorld()
	}
	return &eventBus{world: world}
}

func (b *eventBus) modeChanged(c ModeChange) {
	ModeChangedEvent.Publish(b.world, c)
}

func (b *eventBus) photoAdded(p PhotoAdded) {
	PhotoAddedEvent.Publish(b.world, p)
}

// process delivers every queued event to its subscribers.
func (b *eventBus) process() {
	events.ProcessAllEvents(b.world)
}
