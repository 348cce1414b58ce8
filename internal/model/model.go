package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Vec3 is an integer position or offset in grid space.
// It marshals to JSON as a three-element array: [x, y, z].
type Vec3 struct {
	X int
	Y int
	Z int
}

// V is shorthand for Vec3{X: x, Y: y, Z: z}.
func V(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Less orders vectors by z, then y, then x (the YASS scan order).
func (v Vec3) Less(o Vec3) bool {
	if v.Z != o.Z {
		return v.Z < o.Z
	}
	if v.Y != o.Y {
		return v.Y < o.Y
	}
	return v.X < o.X
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{v.X, v.Y, v.Z})
}

func (v *Vec3) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("cell must be an [x,y,z] array: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("cell must have 3 coordinates, got %d", len(raw))
	}
	v.X, v.Y, v.Z = raw[0], raw[1], raw[2]
	return nil
}

// Axis identifies one of the three grid axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// ParseAxis converts "x", "y" or "z" (any case) to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// Step returns the unit vector along the axis scaled by delta.
func (a Axis) Step(delta int) Vec3 {
	switch a {
	case AxisX:
		return Vec3{X: delta}
	case AxisY:
		return Vec3{Y: delta}
	default:
		return Vec3{Z: delta}
	}
}

// Rotation holds per-axis rotation angles in degrees.
// Each component is one of 0, 90, 180, 270 and the axes are applied X, Y, Z.
type Rotation struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Turn returns the rotation advanced by 90 degrees about the given axis.
func (r Rotation) Turn(a Axis) Rotation {
	switch a {
	case AxisX:
		r.X = (r.X + 90) % 360
	case AxisY:
		r.Y = (r.Y + 90) % 360
	case AxisZ:
		r.Z = (r.Z + 90) % 360
	}
	return r
}

var ErrInvalidRotation = errors.New("rotation angles must be 0, 90, 180 or 270")

// Validate reports an error unless every angle is a quarter turn in [0, 360).
func (r Rotation) Validate() error {
	for _, a := range [3]int{r.X, r.Y, r.Z} {
		if a < 0 || a >= 360 || a%90 != 0 {
			return fmt.Errorf("%w: got (%d, %d, %d)", ErrInvalidRotation, r.X, r.Y, r.Z)
		}
	}
	return nil
}

// IsZero reports whether the rotation is identity.
func (r Rotation) IsZero() bool {
	return r.X == 0 && r.Y == 0 && r.Z == 0
}

var ErrInvalidDimensions = errors.New("grid dimensions must be positive integers")

// Dimensions are the width (x), height (y) and depth (z) of a grid.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Depth  int `json:"depth"`
}

// Validate returns ErrInvalidDimensions if any extent is not positive.
func (d Dimensions) Validate() error {
	if d.Width < 1 || d.Height < 1 || d.Depth < 1 {
		return fmt.Errorf("%w: got %dx%dx%d", ErrInvalidDimensions, d.Width, d.Height, d.Depth)
	}
	return nil
}

// Contains reports whether c lies within [0, dim) on every axis.
func (d Dimensions) Contains(c Vec3) bool {
	return c.X >= 0 && c.X < d.Width &&
		c.Y >= 0 && c.Y < d.Height &&
		c.Z >= 0 && c.Z < d.Depth
}

// Volume returns the number of cells in the grid.
func (d Dimensions) Volume() int {
	return d.Width * d.Height * d.Depth
}

// Center returns the rounded-down center cell.
func (d Dimensions) Center() Vec3 {
	return Vec3{X: d.Width / 2, Y: d.Height / 2, Z: d.Depth / 2}
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%d×%d×%d", d.Width, d.Height, d.Depth)
}

// PlacedPiece is a piece instance that currently sits in the grid.
type PlacedPiece struct {
	PieceID  string   `json:"piece_id"`
	Origin   Vec3     `json:"origin"`
	Rotation Rotation `json:"rotation"`
}

// Occupancy maps a grid cell to the id of the piece occupying it.
type Occupancy map[Vec3]string

// DefaultMessageDuration is how long a transient message stays visible.
const DefaultMessageDuration = 2 * time.Second

// Message is user-facing feedback. A zero Duration keeps the message
// visible until it is replaced.
type Message struct {
	Text     string
	Duration time.Duration
}

// NewMessage returns a message with the default duration.
func NewMessage(text string) Message {
	return Message{Text: text, Duration: DefaultMessageDuration}
}

// PersistentMessage returns a message that never auto-dismisses.
func PersistentMessage(text string) Message {
	return Message{Text: text}
}

// Persistent reports whether the message stays until replaced.
func (m Message) Persistent() bool {
	return m.Duration == 0
}
