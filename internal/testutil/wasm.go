package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WASM value types.
const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

// FuncType is a function signature.
type FuncType struct {
	Params  []byte
	Results []byte
}

func (t FuncType) key() string {
	return fmt.Sprintf("%x>%x", t.Params, t.Results)
}

type importFunc struct {
	module, name string
	typ          FuncType
}

type function struct {
	export string
	typ    FuncType
	locals []byte
	body   []byte
}

type dataSegment struct {
	offset int32
	data   []byte
}

// ModuleBuilder assembles small WebAssembly binaries for tests. All imports
// must be declared before the first function so indices stay stable.
type ModuleBuilder struct {
	imports    []importFunc
	funcs      []function
	data       []dataSegment
	memPages   uint32
	withMemory bool
}

// NewModule starts an empty module.
func NewModule() *ModuleBuilder {
	return &ModuleBuilder{}
}

// Memory adds an exported linear memory named "memory".
func (b *ModuleBuilder) Memory(pages uint32) *ModuleBuilder {
	b.withMemory = true
	b.memPages = pages
	return b
}

// Import declares an imported function and returns its index.
func (b *ModuleBuilder) Import(module, name string, t FuncType) uint32 {
	if len(b.funcs) > 0 {
		panic("testutil: imports must precede functions")
	}
	b.imports = append(b.imports, importFunc{module: module, name: name, typ: t})
	return uint32(len(b.imports) - 1)
}

// Func defines a function, exported under export when it is not empty, and
// returns its index. body must not include the final end opcode.
func (b *ModuleBuilder) Func(export string, t FuncType, body ...[]byte) uint32 {
	return b.FuncWithLocals(export, t, nil, body...)
}

// FuncWithLocals is Func with one local declared per entry of locals.
func (b *ModuleBuilder) FuncWithLocals(export string, t FuncType, locals []byte, body ...[]byte) uint32 {
	b.funcs = append(b.funcs, function{export: export, typ: t, locals: locals, body: bytes.Join(body, nil)})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Data places bytes in memory at offset during instantiation.
func (b *ModuleBuilder) Data(offset int32, data []byte) *ModuleBuilder {
	b.data = append(b.data, dataSegment{offset: offset, data: data})
	return b
}

// Build encodes the module.
func (b *ModuleBuilder) Build() []byte {
	var types []FuncType
	typeIndex := map[string]uint32{}
	typeOf := func(t FuncType) uint32 {
		if idx, ok := typeIndex[t.key()]; ok {
			return idx
		}
		types = append(types, t)
		typeIndex[t.key()] = uint32(len(types) - 1)
		return typeIndex[t.key()]
	}
	for _, imp := range b.imports {
		typeOf(imp.typ)
	}
	for _, fn := range b.funcs {
		typeOf(fn.typ)
	}

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(types) > 0 {
		sec := uleb(uint64(len(types)))
		for _, t := range types {
			sec = append(sec, 0x60)
			sec = append(sec, vec(t.Params)...)
			sec = append(sec, vec(t.Results)...)
		}
		out = appendSection(out, 1, sec)
	}

	if len(b.imports) > 0 {
		sec := uleb(uint64(len(b.imports)))
		for _, imp := range b.imports {
			sec = append(sec, name(imp.module)...)
			sec = append(sec, name(imp.name)...)
			sec = append(sec, 0x00)
			sec = append(sec, uleb(uint64(typeOf(imp.typ)))...)
		}
		out = appendSection(out, 2, sec)
	}

	if len(b.funcs) > 0 {
		sec := uleb(uint64(len(b.funcs)))
		for _, fn := range b.funcs {
			sec = append(sec, uleb(uint64(typeOf(fn.typ)))...)
		}
		out = appendSection(out, 3, sec)
	}

	if b.withMemory {
		sec := []byte{0x01, 0x00}
		sec = append(sec, uleb(uint64(b.memPages))...)
		out = appendSection(out, 5, sec)
	}

	var exports [][]byte
	if b.withMemory {
		exports = append(exports, append(name("memory"), 0x02, 0x00))
	}
	for i, fn := range b.funcs {
		if fn.export == "" {
			continue
		}
		e := append(name(fn.export), 0x00)
		exports = append(exports, append(e, uleb(uint64(len(b.imports)+i))...))
	}
	if len(exports) > 0 {
		sec := uleb(uint64(len(exports)))
		for _, e := range exports {
			sec = append(sec, e...)
		}
		out = appendSection(out, 7, sec)
	}

	if len(b.funcs) > 0 {
		sec := uleb(uint64(len(b.funcs)))
		for _, fn := range b.funcs {
			body := uleb(uint64(len(fn.locals)))
			for _, l := range fn.locals {
				body = append(body, 0x01, l)
			}
			body = append(body, fn.body...)
			body = append(body, 0x0b)
			sec = append(sec, uleb(uint64(len(body)))...)
			sec = append(sec, body...)
		}
		out = appendSection(out, 10, sec)
	}

	if len(b.data) > 0 {
		sec := uleb(uint64(len(b.data)))
		for _, d := range b.data {
			sec = append(sec, 0x00)
			sec = append(sec, I32Const(d.offset)...)
			sec = append(sec, 0x0b)
			sec = append(sec, vec(d.data)...)
		}
		out = appendSection(out, 11, sec)
	}

	return out
}

// Instructions.

// I32Const pushes v.
func I32Const(v int32) []byte { return append([]byte{0x41}, sleb(int64(v))...) }

// I64Const pushes v.
func I64Const(v int64) []byte { return append([]byte{0x42}, sleb(v)...) }

// Call calls function idx.
func Call(idx uint32) []byte { return append([]byte{0x10}, uleb(uint64(idx))...) }

// LocalGet pushes local idx.
func LocalGet(idx uint32) []byte { return append([]byte{0x20}, uleb(uint64(idx))...) }

// I32Load loads an aligned i32 from the address on the stack.
func I32Load() []byte { return []byte{0x28, 0x02, 0x00} }

// I32Store stores an aligned i32 (address, value on the stack).
func I32Store() []byte { return []byte{0x36, 0x02, 0x00} }

// Drop discards the top of the stack.
func Drop() []byte { return []byte{0x1a} }

// Unreachable traps.
func Unreachable() []byte { return []byte{0x00} }

// Ptr32 encodes v little-endian, for iovec data.
func Ptr32(vs ...uint32) []byte {
	out := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

func appendSection(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	out = append(out, uleb(uint64(len(content)))...)
	return append(out, content...)
}

func vec(items []byte) []byte {
	return append(uleb(uint64(len(items))), items...)
}

func name(s string) []byte {
	return vec([]byte(s))
}

func uleb(v uint64) []byte {
	return binary.AppendUvarint(nil, v)
}

func sleb(v int64) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}
