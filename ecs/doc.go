// Package ecs provides ECS adapters for kanim's State events.
//
// The primary adapter is [NewDonburiSink], which bridges kanim events (frame
// advanced, frame list changed, bounds changed, symbol source and tint
// rebuilds) into a [Donburi] world as typed events. Subscribe to
// [StateEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	engine.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
