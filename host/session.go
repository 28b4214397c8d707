package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"

	"github.com/mosaic-dev/loader/capture"
	domainerrors "github.com/mosaic-dev/loader/domain/errors"
	"github.com/mosaic-dev/loader/domain/ports"
	wazeroadapter "github.com/mosaic-dev/loader/infrastructure/wazero"
	"github.com/mosaic-dev/loader/log"
)

// ErrGuestExited is returned for calls into a guest that has already exited.
var ErrGuestExited = errors.New("guest has exited")

// Session is an instantiated guest with its own runtime and stdio buffers.
// It is not safe for concurrent use; guest calls never overlap.
type Session struct {
	id   string
	name string

	runtime wazero.Runtime
	module  api.Module
	memory  api.Memory

	start         api.Function
	startName     string
	handleKey     api.Function
	handleKeyName string

	input  *capture.Buffer
	output *capture.Buffer
	stderr *log.Writer
	logger *slog.Logger

	seed      string
	closeOnce sync.Once
	closeErr  error
}

var _ ports.Guest = (*Session)(nil)

// ID is the unique session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Name is the guest's label, usually its file path.
func (s *Session) Name() string { return s.name }

// Input is the buffer wired as the guest's stdin.
func (s *Session) Input() *capture.Buffer { return s.input }

// Output is the buffer wired as the guest's stdout.
func (s *Session) Output() *capture.Buffer { return s.output }

// Memory is the guest's exported linear memory.
func (s *Session) Memory() api.Memory { return s.memory }

// HandleKey calls the guest's per-event entry point once.
func (s *Session) HandleKey(ctx context.Context) error {
	return s.call(ctx, s.handleKey, s.handleKeyName)
}

// Start calls the guest's main entry point once.
func (s *Session) Start(ctx context.Context) error {
	return s.call(ctx, s.start, s.startName)
}

// Prime performs the one-time bootstrap: the seed line is written to input,
// then handle_key and start are each called once, in that order.
func (s *Session) Prime(ctx context.Context) error {
	_, _ = s.input.Write([]byte(s.seed + "\n"))

	if err := s.HandleKey(ctx); err != nil {
		return domainerrors.NewSetupError(domainerrors.StagePrime, err)
	}
	if err := s.Start(ctx); err != nil {
		return domainerrors.NewSetupError(domainerrors.StagePrime, err)
	}
	s.logger.DebugContext(ctx, "guest primed", "output_bytes", s.output.Len())
	return nil
}

// Call invokes any exported function by name.
func (s *Session) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := s.module.ExportedFunction(name)
	if fn == nil {
		return nil, &domainerrors.GuestCallError{Export: name, Err: fmt.Errorf("%w: %s", ErrMissingExport, name)}
	}
	return s.invoke(ctx, fn, name, params...)
}

func (s *Session) call(ctx context.Context, fn api.Function, name string) error {
	_, err := s.invoke(ctx, fn, name)
	return err
}

// invoke runs fn to completion. A guest exit with code 0 is success; any
// other exit or trap is a GuestCallError.
func (s *Session) invoke(ctx context.Context, fn api.Function, name string, params ...uint64) ([]uint64, error) {
	if s.module.IsClosed() {
		return nil, &domainerrors.GuestCallError{Export: name, Err: ErrGuestExited}
	}

	ctx = wazeroadapter.WithGuestName(ctx, s.name)
	results, err := fn.Call(ctx, params...)
	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 {
			s.logger.InfoContext(ctx, "guest exited", "export", name)
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "guest call failed", "export", name, "error", err)
		return nil, &domainerrors.GuestCallError{Export: name, Err: err}
	}
	return results, nil
}

// Close releases the runtime and everything instantiated in it. It is safe to
// call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.stderr.Flush()
		s.closeErr = s.runtime.Close(ctx)
	})
	return s.closeErr
}
