package app

import "github.com/piwi3910/SomaCube/internal/model"

// Key names accepted by HandleKey.
const (
	KeyLeft   = "ArrowLeft"
	KeyRight  = "ArrowRight"
	KeyUp     = "ArrowUp"
	KeyDown   = "ArrowDown"
	KeyDelete = "Delete"
)

type keyAction struct {
	move   bool
	axis   model.Axis
	delta  int
	remove bool
}

var keyMap = map[string]keyAction{
	KeyLeft:   {move: true, axis: model.AxisX, delta: -1},
	KeyRight:  {move: true, axis: model.AxisX, delta: 1},
	KeyUp:     {move: true, axis: model.AxisY, delta: 1},
	KeyDown:   {move: true, axis: model.AxisY, delta: -1},
	"z":       {move: true, axis: model.AxisZ, delta: -1},
	"x":       {move: true, axis: model.AxisZ, delta: 1},
	"r":       {axis: model.AxisX},
	"f":       {axis: model.AxisY},
	"v":       {axis: model.AxisZ},
	KeyDelete: {remove: true},
}

// HandleKey applies the action bound to key to the selected piece. It
// reports whether anything happened: keys do nothing without a selection
// and unbound keys are ignored.
func (c *Controller) HandleKey(key string) bool {
	if _, ok := c.session.Selected(); !ok {
		return false
	}
	action, ok := keyMap[key]
	if !ok {
		return false
	}
	switch {
	case action.remove:
		return c.session.RemoveSelected() == nil
	case action.move:
		return c.session.Move(action.axis, action.delta) == nil
	default:
		return c.session.Rotate(action.axis) == nil
	}
}

// KeyBound reports whether key has an action.
func KeyBound(key string) bool {
	_, ok := keyMap[key]
	return ok
}
