// Package ebitendev polls keyboard and standard gamepad state through ebiten
// for the human decision source.
package ebitendev

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

var gamepadButtons = map[string]ebiten.StandardGamepadButton{
	"RightBottom":      ebiten.StandardGamepadButtonRightBottom,
	"RightRight":       ebiten.StandardGamepadButtonRightRight,
	"RightLeft":        ebiten.StandardGamepadButtonRightLeft,
	"RightTop":         ebiten.StandardGamepadButtonRightTop,
	"FrontTopLeft":     ebiten.StandardGamepadButtonFrontTopLeft,
	"FrontTopRight":    ebiten.StandardGamepadButtonFrontTopRight,
	"FrontBottomLeft":  ebiten.StandardGamepadButtonFrontBottomLeft,
	"FrontBottomRight": ebiten.StandardGamepadButtonFrontBottomRight,
	"CenterLeft":       ebiten.StandardGamepadButtonCenterLeft,
	"CenterRight":      ebiten.StandardGamepadButtonCenterRight,
	"LeftStick":        ebiten.StandardGamepadButtonLeftStick,
	"RightStick":       ebiten.StandardGamepadButtonRightStick,
	"LeftTop":          ebiten.StandardGamepadButtonLeftTop,
	"LeftBottom":       ebiten.StandardGamepadButtonLeftBottom,
	"LeftLeft":         ebiten.StandardGamepadButtonLeftLeft,
	"LeftRight":        ebiten.StandardGamepadButtonLeftRight,
}

var gamepadAxes = map[string]ebiten.StandardGamepadAxis{
	"LeftStickHorizontal":  ebiten.StandardGamepadAxisLeftStickHorizontal,
	"LeftStickVertical":    ebiten.StandardGamepadAxisLeftStickVertical,
	"RightStickHorizontal": ebiten.StandardGamepadAxisRightStickHorizontal,
	"RightStickVertical":   ebiten.StandardGamepadAxisRightStickVertical,
}

// Device reads the keyboard and the first connected standard gamepad.
// Call Poll once per tick before the decide phase.
type Device struct {
	keys    map[string]ebiten.Key
	ids     []ebiten.GamepadID
	gamepad ebiten.GamepadID
	hasPad  bool
}

func New() *Device {
	keys := make(map[string]ebiten.Key, int(ebiten.KeyMax)+1)
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		name := k.String()
		keys[name] = k
		keys[strings.ToLower(name)] = k
	}
	return &Device{keys: keys}
}

// Poll refreshes the active gamepad.
func (d *Device) Poll() {
	d.ids = ebiten.AppendGamepadIDs(d.ids[:0])
	d.hasPad = false
	for _, id := range d.ids {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			d.gamepad = id
			d.hasPad = true
			return
		}
	}
}

func (d *Device) KeyPressed(name string) bool {
	k, ok := d.keys[strings.TrimPrefix(name, "Key")]
	if !ok {
		k, ok = d.keys[strings.ToLower(name)]
	}
	return ok && ebiten.IsKeyPressed(k)
}

func (d *Device) GamepadButtonPressed(name string) bool {
	b, ok := gamepadButtons[name]
	return ok && d.hasPad && ebiten.IsStandardGamepadButtonPressed(d.gamepad, b)
}

func (d *Device) GamepadAxis(name string) float64 {
	a, ok := gamepadAxes[name]
	if !ok || !d.hasPad {
		return 0
	}
	return ebiten.StandardGamepadAxisValue(d.gamepad, a)
}
