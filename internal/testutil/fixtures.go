package testutil

const wasiModule = "wasi_snapshot_preview1"

var (
	voidType  = FuncType{}
	fdRWType  = FuncType{Params: []byte{I32, I32, I32, I32}, Results: []byte{I32}}
	exitType  = FuncType{Params: []byte{I32}}
	i32Result = FuncType{Results: []byte{I32}}
	i64Result = FuncType{Results: []byte{I64}}
	packedIO  = FuncType{Params: []byte{I64}, Results: []byte{I64}}
	packedIn  = FuncType{Params: []byte{I64}}
	allocType = FuncType{Params: []byte{I32}, Results: []byte{I32}}
)

// fdWrite emits fd_write(fd, iov, 1, nwritten) and drops the errno.
func fdWrite(fn uint32, fd, iov, nwritten int32) []byte {
	return concat(I32Const(fd), I32Const(iov), I32Const(1), I32Const(nwritten), Call(fn), Drop())
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// HelloModule writes "hi\n" to stdout on every handle_key. start does nothing.
func HelloModule() []byte {
	b := NewModule().Memory(1)
	write := b.Import(wasiModule, "fd_write", fdRWType)
	b.Func("_start", voidType)
	b.Func("handle_key", voidType, fdWrite(write, 1, 0, 8))
	b.Data(0, Ptr32(16, 3)).Data(16, []byte("hi\n"))
	return b.Build()
}

// EchoModule copies everything pending on stdin to stdout on every
// handle_key. start writes "started\n".
func EchoModule() []byte {
	const (
		iovIn    = 0
		nread    = 8
		iovOut   = 16
		nwritten = 24
		iovStart = 32
		text     = 48
		buf      = 1024
	)

	b := NewModule().Memory(1)
	read := b.Import(wasiModule, "fd_read", fdRWType)
	write := b.Import(wasiModule, "fd_write", fdRWType)

	b.Func("_start", voidType, fdWrite(write, 1, iovStart, nwritten))
	b.Func("handle_key", voidType,
		I32Const(0), I32Const(iovIn), I32Const(1), I32Const(nread), Call(read), Drop(),
		// iovOut.len = nread
		I32Const(iovOut+4), I32Const(nread), I32Load(), I32Store(),
		fdWrite(write, 1, iovOut, nwritten),
	)

	b.Data(iovIn, Ptr32(buf, 4096))
	b.Data(iovOut, Ptr32(buf, 0))
	b.Data(iovStart, Ptr32(text, 8))
	b.Data(text, []byte("started\n"))
	return b.Build()
}

// StderrModule writes "oops\n" to stderr on every handle_key.
func StderrModule() []byte {
	b := NewModule().Memory(1)
	write := b.Import(wasiModule, "fd_write", fdRWType)
	b.Func("_start", voidType)
	b.Func("handle_key", voidType, fdWrite(write, 2, 0, 8))
	b.Data(0, Ptr32(16, 5)).Data(16, []byte("oops\n"))
	return b.Build()
}

// MagicModule imports mosaic.magic_number and exports answer() -> i32
// returning it.
func MagicModule() []byte {
	b := NewModule().Memory(1)
	magic := b.Import("mosaic", "magic_number", i32Result)
	b.Func("_start", voidType)
	b.Func("handle_key", voidType)
	b.Func("answer", i32Result, Call(magic))
	return b.Build()
}

// LogModule sends record through mosaic.log_message on every handle_key.
func LogModule(record []byte) []byte {
	b := NewModule().Memory(1)
	logMessage := b.Import("mosaic", "log_message", packedIn)
	b.Func("_start", voidType)
	// ptr 0 in the upper half, length in the lower half.
	b.Func("handle_key", voidType, I64Const(int64(len(record))), Call(logMessage))
	b.Data(0, record)
	return b.Build()
}

// HostCallModule exports call() -> i64, which invokes mosaic.<fn> with an
// empty request and returns the packed response. allocate always hands out
// AllocateOffset.
func HostCallModule(fn string) []byte {
	b := NewModule().Memory(1)
	host := b.Import("mosaic", fn, packedIO)
	b.Func("_start", voidType)
	b.Func("handle_key", voidType)
	b.Func("allocate", allocType, I32Const(AllocateOffset))
	b.Func("call", i64Result, I64Const(0), Call(host))
	return b.Build()
}

// AllocateOffset is where HostCallModule's allocate places responses.
const AllocateOffset = 4096

// ExitModule calls proc_exit(code) from start.
func ExitModule(code int32) []byte {
	b := NewModule().Memory(1)
	exit := b.Import(wasiModule, "proc_exit", exitType)
	b.Func("_start", voidType, I32Const(code), Call(exit))
	b.Func("handle_key", voidType)
	return b.Build()
}

// TrapModule traps in handle_key.
func TrapModule() []byte {
	b := NewModule().Memory(1)
	b.Func("_start", voidType)
	b.Func("handle_key", voidType, Unreachable())
	return b.Build()
}

// StartAliasModule exports its entry point as "start" instead of "_start".
func StartAliasModule() []byte {
	b := NewModule().Memory(1)
	b.Func("start", voidType)
	b.Func("handle_key", voidType)
	return b.Build()
}

// NoMemoryModule exports both entry points but no linear memory.
func NoMemoryModule() []byte {
	b := NewModule()
	b.Func("_start", voidType)
	b.Func("handle_key", voidType)
	return b.Build()
}

// NoHandleKeyModule exports memory and start only.
func NoHandleKeyModule() []byte {
	b := NewModule().Memory(1)
	b.Func("_start", voidType)
	return b.Build()
}

// UnknownImportModule imports a host function nobody provides.
func UnknownImportModule() []byte {
	b := NewModule().Memory(1)
	b.Import("mosaic", "does_not_exist", voidType)
	b.Func("_start", voidType)
	b.Func("handle_key", voidType)
	return b.Build()
}

// NotWasm is a byte string that fails compilation.
var NotWasm = []byte("definitely not a wasm module")
