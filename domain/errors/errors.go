// Package errors provides the loader's error taxonomy.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/mosaic-dev/loader/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Stage names a step of session setup.
type Stage string

// Setup stages, in execution order.
const (
	StageConfig      Stage = "config"
	StageSelect      Stage = "select"
	StageRead        Stage = "read"
	StageCompile     Stage = "compile"
	StageHostModule  Stage = "host_module"
	StageInstantiate Stage = "instantiate"
	StageMemory      Stage = "memory"
	StageExport      Stage = "export"
	StagePrime       Stage = "prime"
)

// DetailedError is implemented by errors that can describe themselves as an
// ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// SetupError is a fatal failure before the interaction loop starts.
// It is never retried.
type SetupError struct {
	Err   error
	Stage Stage
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed at %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SetupError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Err.Error(), Type: "setup", Code: string(e.Stage)}
}

// NewSetupError wraps err as a SetupError for stage.
func NewSetupError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &SetupError{Stage: stage, Err: err}
}

// IOError is a terminal failure: entering raw mode, reading an event or
// rendering output.
type IOError struct {
	Err error
	Op  string
}

func (e *IOError) Error() string {
	return fmt.Sprintf("terminal %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *IOError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Err.Error(), Type: "io", Code: e.Op}
}

// GuestCallError is a failed or trapped entry point invocation.
type GuestCallError struct {
	Err    error
	Export string
}

func (e *GuestCallError) Error() string {
	return fmt.Sprintf("guest call %s failed: %v", e.Export, e.Err)
}

func (e *GuestCallError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *GuestCallError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Err.Error(), Type: "guest", Code: e.Export}
}

// IsSetupFatal reports whether err aborted session setup.
func IsSetupFatal(err error) bool {
	var se *SetupError
	return stdErrors.As(err, &se)
}

// ExitCode maps an error returned from a run to a process exit code:
// 0 for nil, 2 for setup failures, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsSetupFatal(err):
		return 2
	default:
		return 1
	}
}
