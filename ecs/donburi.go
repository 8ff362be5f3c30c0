// Package ecs provides ECS adapters for kanim.
package ecs

import (
	"github.com/phanxgames/kanim"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// StateEventType is the Donburi event type for kanim State events.
// Subscribe to this in your ECS systems to receive frame, bounds and rebuild
// notifications.
var StateEventType = events.NewEventType[kanim.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Events are published to StateEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) kanim.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event kanim.Event) {
	StateEventType.Publish(s.world, event)
}

// Attach forwards every event of state into world without an Engine. Call
// the returned function to stop.
func Attach(world donburi.World, state *kanim.State) (cancel func()) {
	sink := NewDonburiSink(world)
	return state.Subscribe(sink.EmitEvent)
}
