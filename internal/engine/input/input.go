// Package input translates SDL2 events into hero interactions.
package input

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// Handler receives translated events.
type Handler interface {
	PointerMove(x, y int)
	Scroll()
	Click()
	Touch()
	// Key receives the SDL key name, e.g. "S" or "Escape".
	Key(name string)
	Resize(width, height int)
	SetHidden(hidden bool)
	Quit()
}

// Input pumps the SDL event queue.
type Input struct {
	events int
}

// New creates a new input handler.
func New() *Input {
	return &Input{}
}

// Poll waits up to timeout for the first event, then drains the queue
// without blocking and forwards every event to h. A zero timeout never
// blocks. It returns the number of events handled.
func (i *Input) Poll(h Handler, timeout time.Duration) int {
	n := 0
	var event sdl.Event
	if timeout > 0 {
		event = sdl.WaitEventTimeout(int(timeout / time.Millisecond))
	} else {
		event = sdl.PollEvent()
	}
	for ; event != nil; event = sdl.PollEvent() {
		if Dispatch(event, h) {
			n++
		}
	}
	i.events += n
	return n
}

// Events returns the total number of events handled.
func (i *Input) Events() int {
	return i.events
}

// Dispatch translates one SDL event and forwards it. It reports whether the
// event was relevant.
func Dispatch(event sdl.Event, h Handler) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		h.Quit()

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			h.Resize(int(e.Data1), int(e.Data2))
		case sdl.WINDOWEVENT_HIDDEN, sdl.WINDOWEVENT_MINIMIZED:
			h.SetHidden(true)
		case sdl.WINDOWEVENT_SHOWN, sdl.WINDOWEVENT_RESTORED:
			h.SetHidden(false)
		case sdl.WINDOWEVENT_CLOSE:
			h.Quit()
		default:
			return false
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return false
		}
		h.Key(sdl.GetKeyName(e.Keysym.Sym))

	case *sdl.MouseMotionEvent:
		h.PointerMove(int(e.X), int(e.Y))

	case *sdl.MouseWheelEvent:
		h.Scroll()

	case *sdl.MouseButtonEvent:
		if e.Type != sdl.MOUSEBUTTONDOWN {
			return false
		}
		h.Click()

	case *sdl.TouchFingerEvent:
		if e.Type != sdl.FINGERDOWN {
			return false
		}
		h.Touch()

	default:
		return false
	}
	return true
}
