// Package bridge delegates rendering to a background execution context.
//
// The foreground Coordinator hands the drawing surface to a Worker exactly
// once and afterwards only sends one-way intents (pointer, resize,
// visibility). The Worker sends back a single "loaded" signal. Both
// directions are FIFO channels; nothing waits for a reply.
package bridge

import (
	"fmt"

	"github.com/Faultbox/hero3d/internal/hero"
)

// MessageType identifies a bridge message.
type MessageType int

const (
	MsgInit MessageType = iota + 1
	MsgMouse
	MsgResize
	MsgVisibility
	MsgLoaded
)

func (t MessageType) String() string {
	switch t {
	case MsgInit:
		return "init"
	case MsgMouse:
		return "mouse"
	case MsgResize:
		return "resize"
	case MsgVisibility:
		return "visibility"
	case MsgLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// Message is a single bridge message. Only the fields relevant to Type are
// set.
type Message struct {
	Type    MessageType
	Surface Surface // MsgInit
	Width   int     // MsgInit, MsgResize
	Height  int     // MsgInit, MsgResize
	Pointer hero.Pointer
	Visible bool // MsgVisibility
}

// Surface is a drawing surface whose rendering context can move between OS
// threads.
type Surface interface {
	// Acquire binds the rendering context to the calling OS thread.
	Acquire() error
	// Release unbinds the rendering context from the calling OS thread.
	Release() error
}

// Renderer is a hero.Renderer that owns GPU resources.
type Renderer interface {
	hero.Renderer
	Close()
}

// RendererFactory builds the scene rig on an acquired surface.
type RendererFactory func(s Surface, width, height int) (Renderer, error)

// Channel is the pair of one-way message queues between the contexts.
type Channel struct {
	toWorker chan Message
	toMain   chan Message
}

// DefaultQueueSize is the capacity of the foreground-to-worker queue.
const DefaultQueueSize = 64

// NewChannel creates a channel whose worker-bound queue holds size messages.
func NewChannel(size int) *Channel {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Channel{
		toWorker: make(chan Message, size),
		// Only one message ever travels back.
		toMain: make(chan Message, 1),
	}
}
