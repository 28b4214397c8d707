package entities

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// KeyCode identifies the key that was pressed.
type KeyCode string

// Key codes. KeyChar carries its rune in KeyEvent.Char, KeyF its number in
// KeyEvent.F.
const (
	KeyChar      KeyCode = "char"
	KeyEnter     KeyCode = "enter"
	KeyTab       KeyCode = "tab"
	KeyBackTab   KeyCode = "backtab"
	KeyBackspace KeyCode = "backspace"
	KeyEsc       KeyCode = "esc"
	KeyUp        KeyCode = "up"
	KeyDown      KeyCode = "down"
	KeyLeft      KeyCode = "left"
	KeyRight     KeyCode = "right"
	KeyHome      KeyCode = "home"
	KeyEnd       KeyCode = "end"
	KeyPageUp    KeyCode = "pageup"
	KeyPageDown  KeyCode = "pagedown"
	KeyInsert    KeyCode = "insert"
	KeyDelete    KeyCode = "delete"
	KeyF         KeyCode = "f"
	KeyNull      KeyCode = "null"
)

var knownKeyCodes = map[KeyCode]bool{
	KeyChar: true, KeyEnter: true, KeyTab: true, KeyBackTab: true,
	KeyBackspace: true, KeyEsc: true, KeyUp: true, KeyDown: true,
	KeyLeft: true, KeyRight: true, KeyHome: true, KeyEnd: true,
	KeyPageUp: true, KeyPageDown: true, KeyInsert: true, KeyDelete: true,
	KeyF: true, KeyNull: true,
}

// Valid reports whether c is a known key code.
func (c KeyCode) Valid() bool {
	return knownKeyCodes[c]
}

// Modifiers is a set of modifier keys held during a key press.
type Modifiers uint8

// Modifier flags.
const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModShift, "shift"},
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
}

// Has reports whether all of m2 are set in m.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// Names returns the modifier names in canonical order (shift, ctrl, alt).
func (m Modifiers) Names() []string {
	names := make([]string, 0, len(modifierNames))
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			names = append(names, mn.name)
		}
	}
	return names
}

// MarshalJSON encodes the set as an array of names.
func (m Modifiers) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Names())
}

// UnmarshalJSON decodes an array of modifier names.
func (m *Modifiers) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("modifiers must be an array of names: %w", err)
	}
	var out Modifiers
	for _, name := range names {
		mod, err := parseModifier(name)
		if err != nil {
			return err
		}
		out |= mod
	}
	*m = out
	return nil
}

func parseModifier(name string) (Modifiers, error) {
	for _, mn := range modifierNames {
		if mn.name == name {
			return mn.mod, nil
		}
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// KeyEvent is a single key press.
type KeyEvent struct {
	Code      KeyCode   `json:"code" jsonschema:"enum=char,enum=enter,enum=tab,enum=backtab,enum=backspace,enum=esc,enum=up,enum=down,enum=left,enum=right,enum=home,enum=end,enum=pageup,enum=pagedown,enum=insert,enum=delete,enum=f,enum=null"`
	Char      string    `json:"char,omitempty" jsonschema:"description=The typed character; present only when code is char"`
	F         int       `json:"f,omitempty" jsonschema:"minimum=1,maximum=24,description=Function key number; present only when code is f"`
	Modifiers Modifiers `json:"modifiers,omitempty"`
}

func (KeyEvent) isEvent() {}

// Rune returns the character of a KeyChar event, or utf8.RuneError.
func (k KeyEvent) Rune() rune {
	if k.Code != KeyChar {
		return utf8.RuneError
	}
	r, size := utf8.DecodeRuneInString(k.Char)
	if size != len(k.Char) {
		return utf8.RuneError
	}
	return r
}

// Validate checks the internal consistency of the event.
func (k KeyEvent) Validate() error {
	if !k.Code.Valid() {
		return fmt.Errorf("unknown key code %q", k.Code)
	}
	switch k.Code {
	case KeyChar:
		if utf8.RuneCountInString(k.Char) != 1 || k.Rune() == utf8.RuneError {
			return fmt.Errorf("char key must carry exactly one character, got %q", k.Char)
		}
	case KeyF:
		if k.F < 1 || k.F > 24 {
			return fmt.Errorf("function key number %d out of range", k.F)
		}
	default:
		if k.Char != "" || k.F != 0 {
			return fmt.Errorf("key %q carries unexpected payload", k.Code)
		}
	}
	return nil
}

// Same reports whether k and other name the same key, ignoring modifiers.
func (k KeyEvent) Same(other KeyEvent) bool {
	return k.Code == other.Code && k.Char == other.Char && k.F == other.F
}

// String returns the key in the notation accepted by ParseKey.
func (k KeyEvent) String() string {
	var b strings.Builder
	for _, name := range k.Modifiers.Names() {
		b.WriteString(name)
		b.WriteByte('+')
	}
	switch k.Code {
	case KeyChar:
		b.WriteString(k.Char)
	case KeyF:
		b.WriteString("f" + strconv.Itoa(k.F))
	default:
		b.WriteString(string(k.Code))
	}
	return b.String()
}

// CharKey returns a KeyChar event for r.
func CharKey(r rune, mods Modifiers) KeyEvent {
	return KeyEvent{Code: KeyChar, Char: string(r), Modifiers: mods}
}

// ParseKey parses key notation such as "q", "esc", "ctrl+c" or "f10".
func ParseKey(s string) (KeyEvent, error) {
	if s == "" {
		return KeyEvent{}, fmt.Errorf("empty key")
	}

	var mods Modifiers
	rest := s
	for {
		i := strings.IndexByte(rest, '+')
		// A trailing "+" is the plus key itself.
		if i <= 0 || i == len(rest)-1 {
			break
		}
		mod, err := parseModifier(strings.ToLower(rest[:i]))
		if err != nil {
			return KeyEvent{}, fmt.Errorf("invalid key %q: %w", s, err)
		}
		mods |= mod
		rest = rest[i+1:]
	}

	if utf8.RuneCountInString(rest) == 1 {
		r, _ := utf8.DecodeRuneInString(rest)
		return CharKey(r, mods), nil
	}

	lower := strings.ToLower(rest)
	if strings.HasPrefix(lower, "f") && len(lower) > 1 {
		if n, err := strconv.Atoi(lower[1:]); err == nil {
			k := KeyEvent{Code: KeyF, F: n, Modifiers: mods}
			return k, k.Validate()
		}
	}

	code := KeyCode(lower)
	if !code.Valid() || code == KeyChar || code == KeyF {
		return KeyEvent{}, fmt.Errorf("invalid key %q", s)
	}
	return KeyEvent{Code: code, Modifiers: mods}, nil
}
