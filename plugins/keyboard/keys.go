package main

import (
	"fmt"
	"strings"
)

// keyCodes are macOS virtual key codes for keys that keystroke cannot name.
var keyCodes = map[string]int{
	"left":      123,
	"right":     124,
	"down":      125,
	"up":        126,
	"return":    36,
	"enter":     36,
	"escape":    53,
	"esc":       53,
	"space":     49,
	"tab":       48,
	"delete":    51,
	"backspace": 51,
}

// buttonKeys is the key sent for each button when a binding gives none.
var buttonKeys = map[string]string{
	"left":   "left",
	"right":  "right",
	"up":     "up",
	"down":   "down",
	"ok":     "return",
	"cancel": "escape",
}

var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// keyScript sends a named key by key code, or any other key as a keystroke.
func keyScript(key string, modifiers []string) string {
	var stmt string
	if code, ok := keyCodes[strings.ToLower(key)]; ok {
		stmt = fmt.Sprintf(`tell application "System Events" to key code %d`, code)
	} else {
		stmt = fmt.Sprintf(`tell application "System Events" to keystroke %s`, quote(key))
	}

	var mods []string
	for _, m := range modifiers {
		if am, ok := modifierMap[strings.ToLower(m)]; ok {
			mods = append(mods, am)
		}
	}
	if len(mods) == 0 {
		return stmt
	}
	return stmt + " using {" + strings.Join(mods, ", ") + "}"
}

// quote renders s as an AppleScript string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
