package engine

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
)

var neighborOffsets = []model.Vec3{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
}

// Rules maps a piece size (cube count) to how many pieces of that size are wanted.
type Rules map[int]int

// Sizes returns the rule sizes in ascending order.
func (r Rules) Sizes() []int {
	out := make([]int, 0, len(r))
	for size := range r {
		out = append(out, size)
	}
	sort.Ints(out)
	return out
}

// TotalCells is the sum of size*count over all rules.
func (r Rules) TotalCells() int {
	n := 0
	for size, count := range r {
		n += size * count
	}
	return n
}

// String renders the rules in the "size: count" file format, largest size first.
func (r Rules) String() string {
	sizes := r.Sizes()
	var b strings.Builder
	for i := len(sizes) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%d: %d\n", sizes[i], r[sizes[i]])
	}
	return b.String()
}

// ParseRules reads "size: count" lines. Blank lines and lines starting with
// '#' are skipped; a repeated size keeps the last count.
func ParseRules(r io.Reader) (Rules, error) {
	rules := make(Rules)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sizeStr, countStr, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: bad line in rules: %q", lineNo, line)
		}
		size, err := strconv.Atoi(strings.TrimSpace(sizeStr))
		if err != nil || size < 1 {
			return nil, fmt.Errorf("line %d: invalid size %q", lineNo, sizeStr)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("line %d: invalid count %q", lineNo, countStr)
		}
		rules[size] = count
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return rules, nil
}

// GeneratePolycubes returns every distinct polycube of n cubes, up to
// rotation, in canonical form and sorted by canonical key.
func GeneratePolycubes(n int) [][]model.Vec3 {
	if n < 1 {
		return nil
	}
	level := map[string][]model.Vec3{"0,0,0": {{}}}
	for size := 1; size < n; size++ {
		next := make(map[string][]model.Vec3)
		for _, shape := range level {
			cells := make(map[model.Vec3]struct{}, len(shape))
			for _, c := range shape {
				cells[c] = struct{}{}
			}
			for _, c := range shape {
				for _, d := range neighborOffsets {
					nb := c.Add(d)
					if _, ok := cells[nb]; ok {
						continue
					}
					grown := append(append([]model.Vec3(nil), shape...), nb)
					form := CanonicalForm(grown)
					key := shapeKey(form)
					if _, seen := next[key]; !seen {
						next[key] = form
					}
				}
			}
		}
		level = next
	}

	keys := make([]string, 0, len(level))
	for k := range level {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]model.Vec3, len(keys))
	for i, k := range keys {
		out[i] = level[k]
	}
	return out
}

// GenerateShapes picks, for each rule, the first count polycubes of that size.
func GenerateShapes(rules Rules) map[int][][]model.Vec3 {
	out := make(map[int][][]model.Vec3, len(rules))
	for _, size := range rules.Sizes() {
		all := GeneratePolycubes(size)
		count := rules[size]
		if count > len(all) {
			count = len(all)
		}
		out[size] = all[:count]
	}
	return out
}
