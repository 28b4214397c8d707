package hostfuncs

import (
	"encoding/json"
	"fmt"
)

// ErrorKind classifies a host function failure.
type ErrorKind string

const (
	KindBadRequest      ErrorKind = "bad_request"
	KindUnknownFunction ErrorKind = "unknown_function"
	KindUnavailable     ErrorKind = "unavailable"
	KindInternal        ErrorKind = "internal"
)

// ErrorResponse describes a failed host function call. Guests receive it as
// {"error": {...}} in place of the regular response, so a failure never traps.
type ErrorResponse struct {
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
	Function string    `json:"function,omitempty"`
}

func (e ErrorResponse) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Function, e.Kind, e.Message)
}

type errorEnvelope struct {
	Error *ErrorResponse `json:"error"`
}

// JSON returns the envelope written to the guest.
func (e ErrorResponse) JSON() []byte {
	data, err := json.Marshal(errorEnvelope{Error: &e})
	if err != nil {
		// Only strings inside; cannot fail.
		return []byte(`{"error":{"kind":"internal","message":"unencodable error"}}`)
	}
	return data
}

// ParseError reports whether resp is an error envelope and decodes it.
func ParseError(resp []byte) (ErrorResponse, bool) {
	var env errorEnvelope
	if err := json.Unmarshal(resp, &env); err != nil || env.Error == nil || env.Error.Kind == "" {
		return ErrorResponse{}, false
	}
	return *env.Error, true
}

// BadRequest reports a request the guest should not have sent.
func BadRequest(format string, args ...any) ErrorResponse {
	return ErrorResponse{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// UnknownFunction reports a name no handler is registered under.
func UnknownFunction(name string) ErrorResponse {
	return ErrorResponse{Kind: KindUnknownFunction, Message: "no such host function", Function: name}
}

// Unavailable reports a resource the host cannot provide right now.
func Unavailable(format string, args ...any) ErrorResponse {
	return ErrorResponse{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Internal reports a host-side failure.
func Internal(format string, args ...any) ErrorResponse {
	return ErrorResponse{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

func recovered(v any) ErrorResponse {
	switch v := v.(type) {
	case error:
		return Internal("panic: %v", v)
	case string:
		return Internal("panic: %s", v)
	default:
		return Internal("panic recovered")
	}
}
