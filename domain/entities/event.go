package entities

// Event is a discrete input event produced by a terminal backend.
// Implementations: KeyEvent, ResizeEvent.
type Event interface {
	isEvent()
}

// ResizeEvent reports a new terminal size.
type ResizeEvent struct {
	Columns int
	Rows    int
}

func (ResizeEvent) isEvent() {}
