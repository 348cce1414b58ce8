package engine

import (
	"math"

	"github.com/piwi3910/SomaCube/internal/model"
)

// Apply rotates each offset of shape by rot.X degrees about the X axis, then
// rot.Y about Y, then rot.Z about Z. The result has the same length and
// order as shape and every component is exactly integral.
func Apply(shape []model.Vec3, rot model.Rotation) []model.Vec3 {
	out := make([]model.Vec3, len(shape))
	copy(out, shape)
	if rot.IsZero() {
		return out
	}

	cx, sx := trig(rot.X)
	cy, sy := trig(rot.Y)
	cz, sz := trig(rot.Z)
	for i, v := range out {
		// X
		v.Y, v.Z = v.Y*cx-v.Z*sx, v.Y*sx+v.Z*cx
		// Y
		v.X, v.Z = v.X*cy+v.Z*sy, -v.X*sy+v.Z*cy
		// Z
		v.X, v.Y = v.X*cz-v.Y*sz, v.X*sz+v.Y*cz
		out[i] = v
	}
	return out
}

// trig returns cos and sin of deg rounded to the nearest integer, which is
// exact for multiples of 90.
func trig(deg int) (int, int) {
	rad := float64(deg) * math.Pi / 180
	return int(math.Round(math.Cos(rad))), int(math.Round(math.Sin(rad)))
}

// Translate returns shape shifted by origin.
func Translate(shape []model.Vec3, origin model.Vec3) []model.Vec3 {
	out := make([]model.Vec3, len(shape))
	for i, v := range shape {
		out[i] = v.Add(origin)
	}
	return out
}
