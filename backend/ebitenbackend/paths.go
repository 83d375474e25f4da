package ebitenbackend

import (
	"strings"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
)

// Control paths follow the "<Device>/control" form: "<Keyboard>/space",
// "<Mouse>/leftButton", "<Gamepad>/buttonSouth". Control names as used
// in binding groups are the bare control part for keyboard keys plus a
// few aliases for mouse and gamepad controls.

const (
	deviceKeyboard = "<Keyboard>"
	deviceMouse    = "<Mouse>"
	deviceGamepad  = "<Gamepad>"
)

// keyboard keys by lower-camel name ("space", "leftShift", "arrowUp"),
// derived from ebiten's own key names.
var keyByName = map[string]ebiten.Key{}

func init() {
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		name := k.String()
		if name == "" {
			continue
		}
		keyByName[lowerFirst(name)] = k
	}
}

var mouseByName = map[string]ebiten.MouseButton{
	"leftButton":   ebiten.MouseButtonLeft,
	"rightButton":  ebiten.MouseButtonRight,
	"middleButton": ebiten.MouseButtonMiddle,
	// Numbered aliases, the way bindings assets commonly spell them.
	"mouse0": ebiten.MouseButtonLeft,
	"mouse1": ebiten.MouseButtonRight,
	"mouse2": ebiten.MouseButtonMiddle,
}

// canonical mouse control name per button, used when building paths.
var mouseName = map[ebiten.MouseButton]string{
	ebiten.MouseButtonLeft:   "leftButton",
	ebiten.MouseButtonRight:  "rightButton",
	ebiten.MouseButtonMiddle: "middleButton",
}

var gamepadByName = map[string]ebiten.StandardGamepadButton{
	"buttonSouth": ebiten.StandardGamepadButtonRightBottom,
	"buttonEast":  ebiten.StandardGamepadButtonRightRight,
	"buttonWest":  ebiten.StandardGamepadButtonRightLeft,
	"buttonNorth": ebiten.StandardGamepadButtonRightTop,
	"dpadUp":      ebiten.StandardGamepadButtonLeftTop,
	"dpadDown":    ebiten.StandardGamepadButtonLeftBottom,
	"dpadLeft":    ebiten.StandardGamepadButtonLeftLeft,
	"dpadRight":   ebiten.StandardGamepadButtonLeftRight,
	"start":       ebiten.StandardGamepadButtonCenterRight,
	"select":      ebiten.StandardGamepadButtonCenterLeft,
}

// pathForName resolves a binding-group control name to its nominal
// path. Keyboard names win over mouse/gamepad aliases.
func pathForName(name string) (string, bool) {
	if _, ok := keyByName[name]; ok {
		return deviceKeyboard + "/" + name, true
	}
	if btn, ok := mouseByName[name]; ok {
		return deviceMouse + "/" + mouseName[btn], true
	}
	if _, ok := gamepadByName[name]; ok {
		return deviceGamepad + "/" + name, true
	}
	return "", false
}

// splitPath separates "<Device>/control" into its parts.
func splitPath(path string) (device, control string) {
	i := strings.Index(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// equalPath compares control paths case-insensitively.
func equalPath(a, b string) bool {
	return strings.EqualFold(a, b)
}

func excluded(path string, excludes []string) bool {
	for _, ex := range excludes {
		if equalPath(path, ex) {
			return true
		}
	}
	return false
}

// lowerFirst converts "ArrowUp" to "arrowUp".
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// displayName renders a control path as a human-readable label:
// "<Keyboard>/leftShift" becomes "Left Shift".
func displayName(path string) string {
	_, control := splitPath(path)
	if control == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range control {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) || (unicode.IsDigit(r) && !unicode.IsDigit(rune(control[i-1]))) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
