package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/piwi3910/SomaCube/internal/model"
)

var (
	ErrNoCarving     = errors.New("no valid carving found")
	ErrRulesTooLarge = errors.New("cannot carve piece larger than volume")
)

// CarvePieces tiles the whole box with connected, pairwise distinct pieces
// whose sizes and counts follow rules. The result maps each size to the
// carved pieces of that size, each as normalized offsets. The search stops
// with ctx.Err() once ctx is done.
func CarvePieces(ctx context.Context, dims model.Dimensions, rules Rules) (map[int][][]model.Vec3, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	volume := dims.Volume()

	var sizes []int
	for _, size := range rules.Sizes() {
		count := rules[size]
		if size > volume || size*count > volume {
			return nil, fmt.Errorf("%w: size %d", ErrRulesTooLarge, size)
		}
		for i := 0; i < count; i++ {
			sizes = append(sizes, size)
		}
	}
	if total := rules.TotalCells(); total != volume {
		return nil, fmt.Errorf("%w: rules cover %d cells, grid has %d", ErrNoCarving, total, volume)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))

	c := &carver{
		ctx:    ctx,
		dims:   dims,
		filled: make(map[model.Vec3]bool, volume),
		used:   make(map[string]bool),
		placed: make([][]model.Vec3, len(sizes)),
		sizes:  sizes,
	}
	if !c.place(0) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoCarving
	}

	out := make(map[int][][]model.Vec3)
	for i, size := range sizes {
		out[size] = append(out[size], Normalize(c.placed[i]))
	}
	return out, nil
}

type carver struct {
	ctx    context.Context
	dims   model.Dimensions
	filled map[model.Vec3]bool
	used   map[string]bool
	placed [][]model.Vec3
	sizes  []int
}

func (c *carver) place(index int) bool {
	if index >= len(c.sizes) {
		return true
	}
	if c.ctx.Err() != nil {
		return false
	}
	start, ok := c.firstEmpty()
	if !ok {
		return false
	}
	for _, shape := range c.connectedShapes(start, c.sizes[index]) {
		key := CanonicalKey(shape)
		if c.used[key] {
			continue
		}
		c.mark(shape, true)
		c.used[key] = true
		c.placed[index] = shape

		if c.place(index + 1) {
			return true
		}

		delete(c.used, key)
		c.mark(shape, false)
		c.placed[index] = nil
	}
	return false
}

func (c *carver) mark(shape []model.Vec3, v bool) {
	for _, cell := range shape {
		if v {
			c.filled[cell] = true
		} else {
			delete(c.filled, cell)
		}
	}
}

// firstEmpty scans x, then y, then z.
func (c *carver) firstEmpty() (model.Vec3, bool) {
	for x := 0; x < c.dims.Width; x++ {
		for y := 0; y < c.dims.Height; y++ {
			for z := 0; z < c.dims.Depth; z++ {
				v := model.Vec3{X: x, Y: y, Z: z}
				if !c.filled[v] {
					return v, true
				}
			}
		}
	}
	return model.Vec3{}, false
}

func (c *carver) emptyNeighbors(cell model.Vec3) []model.Vec3 {
	var out []model.Vec3
	for _, d := range neighborOffsets {
		nb := cell.Add(d)
		if c.dims.Contains(nb) && !c.filled[nb] {
			out = append(out, nb)
		}
	}
	return out
}

// connectedShapes grows every connected set of size empty cells from start,
// using only cells after start in x, y, z order. One shape is kept per
// canonical key, in discovery order.
func (c *carver) connectedShapes(start model.Vec3, size int) [][]model.Vec3 {
	var found [][]model.Vec3
	seenSets := make(map[string]bool)
	seenKeys := make(map[string]bool)

	var grow func(shape []model.Vec3, in map[model.Vec3]bool, frontier map[model.Vec3]bool)
	grow = func(shape []model.Vec3, in map[model.Vec3]bool, frontier map[model.Vec3]bool) {
		if len(shape) == size {
			setKey := shapeKey(sortedXYZ(shape))
			if seenSets[setKey] {
				return
			}
			seenSets[setKey] = true
			key := CanonicalKey(shape)
			if !seenKeys[key] {
				seenKeys[key] = true
				found = append(found, append([]model.Vec3(nil), shape...))
			}
			return
		}
		for _, cell := range sortedXYZ(keys(frontier)) {
			if !lessXYZ(start, cell) {
				continue
			}
			in[cell] = true
			next := make(map[model.Vec3]bool, len(frontier)+6)
			for f := range frontier {
				if f != cell {
					next[f] = true
				}
			}
			for _, nb := range c.emptyNeighbors(cell) {
				if !in[nb] {
					next[nb] = true
				}
			}
			grow(append(shape, cell), in, next)
			delete(in, cell)
		}
	}

	frontier := make(map[model.Vec3]bool)
	for _, nb := range c.emptyNeighbors(start) {
		frontier[nb] = true
	}
	grow([]model.Vec3{start}, map[model.Vec3]bool{start: true}, frontier)
	return found
}

func keys(m map[model.Vec3]bool) []model.Vec3 {
	out := make([]model.Vec3, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedXYZ(cells []model.Vec3) []model.Vec3 {
	out := append([]model.Vec3(nil), cells...)
	sort.Slice(out, func(i, j int) bool { return lessXYZ(out[i], out[j]) })
	return out
}
