package kanim

// Event is a change notification raised by a State.
type Event interface {
	isEvent()
}

// SymbolSourceRebuilt fires after the symbol source table is replaced.
type SymbolSourceRebuilt struct{ Sources SymbolSources }

// TintRebuilt fires after the tint state is replaced.
type TintRebuilt struct{ Tint Tint }

// FrameListChanged fires when the active clip changes, including to none.
type FrameListChanged struct {
	Bank   Hash
	Anim   string
	Facing Facing
	Frames int
}

// BoundingRectChanged fires when the active clip's bounds change.
type BoundingRectChanged struct{ Bounds Rect }

// FrameAdvanced fires when the playback clock lands on a different frame.
type FrameAdvanced struct{ Frame, Previous int }

func (SymbolSourceRebuilt) isEvent() {}
func (TintRebuilt) isEvent()         {}
func (FrameListChanged) isEvent()    {}
func (BoundingRectChanged) isEvent() {}
func (FrameAdvanced) isEvent()       {}

type stateSub struct {
	id int
	fn func(Event)
}

// observers is a plain observer list. Handlers run synchronously on the
// goroutine that changed the State.
type observers struct {
	subs   []stateSub
	nextID int
}

func (o *observers) subscribe(fn func(Event)) func() {
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, stateSub{id: id, fn: fn})
	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

func (o *observers) emit(ev Event) {
	for _, s := range o.subs {
		s.fn(ev)
	}
}
