// Package terminal implements ports.Terminal on top of the process's
// controlling terminal.
//
// Raw mode is handled by golang.org/x/term, the alternate screen and cursor by
// termenv. Key presses are decoded from the raw byte stream by Decoder; window
// size changes arrive as entities.ResizeEvent where the platform reports them.
package terminal
