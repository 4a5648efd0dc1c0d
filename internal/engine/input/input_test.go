package input

import (
	"reflect"
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

type recorder struct {
	calls []string
	args  [][2]int
}

func (r *recorder) record(name string, a, b int) {
	r.calls = append(r.calls, name)
	r.args = append(r.args, [2]int{a, b})
}

func (r *recorder) PointerMove(x, y int)     { r.record("pointer", x, y) }
func (r *recorder) Scroll()                  { r.record("scroll", 0, 0) }
func (r *recorder) Click()                   { r.record("click", 0, 0) }
func (r *recorder) Touch()                   { r.record("touch", 0, 0) }
func (r *recorder) Key(name string)          { r.record("key:"+name, 0, 0) }
func (r *recorder) Resize(width, height int) { r.record("resize", width, height) }
func (r *recorder) SetHidden(hidden bool) {
	if hidden {
		r.record("hidden", 0, 0)
	} else {
		r.record("shown", 0, 0)
	}
}
func (r *recorder) Quit() { r.record("quit", 0, 0) }

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		event    sdl.Event
		want     string
		wantArgs [2]int
		handled  bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, "quit", [2]int{}, true},
		{"motion", &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20}, "pointer", [2]int{10, 20}, true},
		{"wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 1}, "scroll", [2]int{}, true},
		{"button down", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN}, "click", [2]int{}, true},
		{"button up", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP}, "", [2]int{}, false},
		{"finger down", &sdl.TouchFingerEvent{Type: sdl.FINGERDOWN}, "touch", [2]int{}, true},
		{"finger motion", &sdl.TouchFingerEvent{Type: sdl.FINGERMOTION}, "", [2]int{}, false},
		{"key up", &sdl.KeyboardEvent{Type: sdl.KEYUP}, "", [2]int{}, false},
		{"key repeat", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1}, "", [2]int{}, false},
		{"resize", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 640, Data2: 480}, "resize", [2]int{640, 480}, true},
		{"minimized", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MINIMIZED}, "hidden", [2]int{}, true},
		{"hidden", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_HIDDEN}, "hidden", [2]int{}, true},
		{"restored", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESTORED}, "shown", [2]int{}, true},
		{"focus", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED}, "", [2]int{}, false},
		{"exposed is a repaint", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_EXPOSED}, "", [2]int{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			if got := Dispatch(tt.event, r); got != tt.handled {
				t.Fatalf("handled = %v, want %v", got, tt.handled)
			}
			if !tt.handled {
				if len(r.calls) != 0 {
					t.Errorf("unexpected calls: %v", r.calls)
				}
				return
			}
			if !reflect.DeepEqual(r.calls, []string{tt.want}) {
				t.Fatalf("calls = %v, want [%s]", r.calls, tt.want)
			}
			if r.args[0] != tt.wantArgs {
				t.Errorf("args = %v, want %v", r.args[0], tt.wantArgs)
			}
		})
	}
}
