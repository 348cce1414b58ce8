package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
)

// Matrix is a 3×3 integer transform applied to column vectors.
type Matrix [3][3]int

// Transform returns m·v.
func (m Matrix) Transform(v model.Vec3) model.Vec3 {
	return model.Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m Matrix) det() int {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

var orientations = buildOrientations()

// buildOrientations enumerates signed permutation matrices and keeps the
// proper rotations (determinant 1).
func buildOrientations() []Matrix {
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	var out []Matrix
	for _, p := range perms {
		for signs := 0; signs < 8; signs++ {
			var m Matrix
			for row := 0; row < 3; row++ {
				s := 1
				if signs&(1<<row) != 0 {
					s = -1
				}
				m[row][p[row]] = s
			}
			if m.det() == 1 {
				out = append(out, m)
			}
		}
	}
	return out
}

// Orientations returns the 24 rotation matrices of the cube.
func Orientations() []Matrix {
	out := make([]Matrix, len(orientations))
	copy(out, orientations)
	return out
}

// Normalize translates shape so its minimum corner is the origin and sorts
// the cells by x, then y, then z.
func Normalize(shape []model.Vec3) []model.Vec3 {
	if len(shape) == 0 {
		return nil
	}
	minV := shape[0]
	for _, c := range shape[1:] {
		minV.X = min(minV.X, c.X)
		minV.Y = min(minV.Y, c.Y)
		minV.Z = min(minV.Z, c.Z)
	}
	out := make([]model.Vec3, len(shape))
	for i, c := range shape {
		out[i] = c.Sub(minV)
	}
	sort.Slice(out, func(i, j int) bool { return lessXYZ(out[i], out[j]) })
	return out
}

// CanonicalForm returns the lexicographically smallest normalized form of
// shape over all 24 orientations.
func CanonicalForm(shape []model.Vec3) []model.Vec3 {
	var best []model.Vec3
	rotated := make([]model.Vec3, len(shape))
	for _, m := range orientations {
		for i, c := range shape {
			rotated[i] = m.Transform(c)
		}
		form := Normalize(rotated)
		if best == nil || compareShapes(form, best) < 0 {
			best = form
		}
	}
	return best
}

// CanonicalKey is a string form of CanonicalForm. Two shapes share a key
// exactly when one is a rotated translate of the other.
func CanonicalKey(shape []model.Vec3) string {
	return shapeKey(CanonicalForm(shape))
}

func shapeKey(cells []model.Vec3) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(c.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Y))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Z))
	}
	return b.String()
}

func lessXYZ(a, b model.Vec3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

func compareShapes(a, b []model.Vec3) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		if lessXYZ(a[i], b[i]) {
			return -1
		}
		return 1
	}
	return len(a) - len(b)
}
