package terminal

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mosaic-dev/loader/domain/entities"
)

const (
	esc = 0x1b

	// maxPending bounds how many bytes of an unfinished sequence are held
	// before the decoder gives up on it.
	maxPending = 32
)

// Decoder turns raw terminal input bytes into key events. Sequences split
// across reads are completed on the next Feed.
type Decoder struct {
	pending []byte
}

// Feed decodes as many keys as p (plus any pending bytes) contains.
func (d *Decoder) Feed(p []byte) []entities.KeyEvent {
	buf := append(d.pending, p...)
	var keys []entities.KeyEvent

	for len(buf) > 0 {
		k, n, ok := decodeKey(buf)
		if n == 0 {
			if len(buf) <= maxPending {
				break
			}
			// Drop a byte of a runaway sequence and resynchronise.
			n, ok = 1, false
		}
		if ok {
			keys = append(keys, k)
		}
		buf = buf[n:]
	}

	d.pending = append(d.pending[:0:0], buf...)
	return keys
}

// decodeKey decodes the key at the start of b. n is the number of bytes
// consumed; n == 0 means b is an incomplete sequence. ok is false when the
// consumed bytes map to no key.
func decodeKey(b []byte) (k entities.KeyEvent, n int, ok bool) {
	c := b[0]
	switch {
	case c == esc:
		return decodeEscape(b)
	case c == '\r' || c == '\n':
		return entities.KeyEvent{Code: entities.KeyEnter}, 1, true
	case c == '\t':
		return entities.KeyEvent{Code: entities.KeyTab}, 1, true
	case c == 0x7f || c == 0x08:
		return entities.KeyEvent{Code: entities.KeyBackspace}, 1, true
	case c == 0x00:
		return entities.CharKey(' ', entities.ModCtrl), 1, true
	case c < 0x1b:
		return entities.CharKey(rune('a'+c-1), entities.ModCtrl), 1, true
	case c < 0x20:
		return entities.CharKey(rune(`\]^_`[c-0x1c]), entities.ModCtrl), 1, true
	case c < utf8.RuneSelf:
		return entities.CharKey(rune(c), 0), 1, true
	}

	if !utf8.FullRune(b) {
		return entities.KeyEvent{}, 0, false
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return entities.KeyEvent{}, size, false
	}
	return entities.CharKey(r, 0), size, true
}

func decodeEscape(b []byte) (entities.KeyEvent, int, bool) {
	if len(b) == 1 {
		return entities.KeyEvent{Code: entities.KeyEsc}, 1, true
	}

	switch b[1] {
	case '[':
		if len(b) == 2 {
			return entities.CharKey('[', entities.ModAlt), 2, true
		}
		return decodeCSI(b)
	case 'O':
		if len(b) == 2 {
			return entities.CharKey('O', entities.ModAlt), 2, true
		}
		k, ok := ss3Keys[b[2]]
		return k, 3, ok
	case esc:
		return entities.KeyEvent{Code: entities.KeyEsc, Modifiers: entities.ModAlt}, 2, true
	}

	k, n, ok := decodeKey(b[1:])
	if n == 0 {
		return k, 0, false
	}
	k.Modifiers |= entities.ModAlt
	return k, n + 1, ok
}

var ss3Keys = map[byte]entities.KeyEvent{
	'P': {Code: entities.KeyF, F: 1},
	'Q': {Code: entities.KeyF, F: 2},
	'R': {Code: entities.KeyF, F: 3},
	'S': {Code: entities.KeyF, F: 4},
	'A': {Code: entities.KeyUp},
	'B': {Code: entities.KeyDown},
	'C': {Code: entities.KeyRight},
	'D': {Code: entities.KeyLeft},
	'H': {Code: entities.KeyHome},
	'F': {Code: entities.KeyEnd},
}

var csiFinalKeys = map[byte]entities.KeyCode{
	'A': entities.KeyUp,
	'B': entities.KeyDown,
	'C': entities.KeyRight,
	'D': entities.KeyLeft,
	'H': entities.KeyHome,
	'F': entities.KeyEnd,
}

var csiTildeKeys = map[int]entities.KeyEvent{
	1:  {Code: entities.KeyHome},
	2:  {Code: entities.KeyInsert},
	3:  {Code: entities.KeyDelete},
	4:  {Code: entities.KeyEnd},
	5:  {Code: entities.KeyPageUp},
	6:  {Code: entities.KeyPageDown},
	7:  {Code: entities.KeyHome},
	8:  {Code: entities.KeyEnd},
	11: {Code: entities.KeyF, F: 1},
	12: {Code: entities.KeyF, F: 2},
	13: {Code: entities.KeyF, F: 3},
	14: {Code: entities.KeyF, F: 4},
	15: {Code: entities.KeyF, F: 5},
	17: {Code: entities.KeyF, F: 6},
	18: {Code: entities.KeyF, F: 7},
	19: {Code: entities.KeyF, F: 8},
	20: {Code: entities.KeyF, F: 9},
	21: {Code: entities.KeyF, F: 10},
	23: {Code: entities.KeyF, F: 11},
	24: {Code: entities.KeyF, F: 12},
}

// decodeCSI decodes "ESC [ params final".
func decodeCSI(b []byte) (entities.KeyEvent, int, bool) {
	end := -1
	for i := 2; i < len(b); i++ {
		if b[i] >= 0x40 && b[i] <= 0x7e {
			end = i
			break
		}
		if b[i] < 0x20 || b[i] > 0x3f {
			// Not a parameter or intermediate byte: malformed.
			return entities.KeyEvent{}, i, false
		}
	}
	if end < 0 {
		return entities.KeyEvent{}, 0, false
	}

	n := end + 1
	final := b[end]
	params := strings.Split(string(b[2:end]), ";")
	mods := csiModifiers(params)

	if final == 'Z' {
		return entities.KeyEvent{Code: entities.KeyBackTab, Modifiers: mods | entities.ModShift}, n, true
	}
	if code, ok := csiFinalKeys[final]; ok {
		return entities.KeyEvent{Code: code, Modifiers: mods}, n, true
	}
	if final == '~' {
		num, err := strconv.Atoi(params[0])
		if err != nil {
			return entities.KeyEvent{}, n, false
		}
		k, ok := csiTildeKeys[num]
		k.Modifiers = mods
		return k, n, ok
	}
	return entities.KeyEvent{}, n, false
}

// csiModifiers reads the xterm modifier parameter: 1 + (shift=1|alt=2|ctrl=4).
func csiModifiers(params []string) entities.Modifiers {
	if len(params) < 2 {
		return 0
	}
	m, err := strconv.Atoi(params[1])
	if err != nil || m < 2 {
		return 0
	}
	m--
	var mods entities.Modifiers
	if m&1 != 0 {
		mods |= entities.ModShift
	}
	if m&2 != 0 {
		mods |= entities.ModAlt
	}
	if m&4 != 0 {
		mods |= entities.ModCtrl
	}
	return mods
}
