package entities

import "fmt"

// ErrorDetail is the structured form of a fatal loader error, as logged
// before the process exits.
//
// Type is one of "setup", "io", "guest" or "internal". Code narrows it down:
// the setup stage, the terminal operation or the guest export.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Code != "":
		return fmt.Sprintf("%s [%s]: %s", e.Type, e.Code, e.Message)
	case e.Type != "":
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	default:
		return e.Message
	}
}
