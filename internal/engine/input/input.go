// Package input turns SDL2 events into preview actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is what the preview should do in response to an event.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionResize
	ActionPause
	ActionRegenerate
	ActionScreenshot
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionResize:
		return "resize"
	case ActionPause:
		return "pause"
	case ActionRegenerate:
		return "regenerate"
	case ActionScreenshot:
		return "screenshot"
	}
	return "none"
}

// Event is a translated input event. Width and Height are set for
// ActionResize.
type Event struct {
	Action Action
	Width  int
	Height int
}

// Key bindings.
var bindings = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE: ActionQuit,
	sdl.SCANCODE_Q:      ActionQuit,
	sdl.SCANCODE_SPACE:  ActionPause,
	sdl.SCANCODE_R:      ActionRegenerate,
	sdl.SCANCODE_F12:    ActionScreenshot,
}

// Input polls SDL events once per frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 8),
	}
}

// Poll drains the SDL event queue and returns the actions it produced.
// The returned slice is reused by the next call.
func (i *Input) Poll() []Event {
	i.events = i.events[:0]
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := translate(event); ok {
			i.events = append(i.events, ev)
		}
	}
	return i.events
}

func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Action: ActionQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Action: ActionResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			break
		}
		if a, ok := bindings[e.Keysym.Scancode]; ok {
			return Event{Action: a}, true
		}
	}
	return Event{}, false
}
