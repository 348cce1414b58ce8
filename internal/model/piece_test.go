package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHasSevenPieces(t *testing.T) {
	pieces := SomaPieces()
	require.Len(t, pieces, 7)

	total := 0
	ids := ""
	for _, p := range pieces {
		total += p.Size()
		ids += p.ID
	}
	assert.Equal(t, 27, total)
	assert.Equal(t, "3ltzpnc", ids)
}

func TestLookup(t *testing.T) {
	p, err := Lookup("3")
	require.NoError(t, err)
	assert.Equal(t, "V Shape", p.Name)
	assert.Equal(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, p.BaseShape)

	_, err = Lookup("q")
	assert.ErrorIs(t, err, ErrPieceNotFound)
	assert.False(t, IsPieceID("V"))
	assert.True(t, IsPieceID("c"))
}

func TestLookupReturnsCopy(t *testing.T) {
	p, err := Lookup("t")
	require.NoError(t, err)
	p.BaseShape[0] = V(9, 9, 9)

	again, err := Lookup("t")
	require.NoError(t, err)
	assert.Equal(t, V(0, 0, 0), again.BaseShape[0])
}

func TestPieceSetIgnoresDuplicates(t *testing.T) {
	a := PieceDefinition{ID: "a", BaseShape: []Vec3{{0, 0, 0}}}
	b := PieceDefinition{ID: "a", Name: "dup"}
	s := NewPieceSet(a, b)
	assert.Equal(t, 1, s.Len())
	got, err := s.Lookup("a")
	require.NoError(t, err)
	assert.Empty(t, got.Name)
}

func TestSomaSetTotals(t *testing.T) {
	s := SomaSet()
	assert.Equal(t, 7, s.Len())
	assert.Equal(t, 27, s.TotalCells())
	assert.Equal(t, []string{"3", "l", "t", "z", "p", "n", "c"}, s.IDs())
}

func TestNewGeneratedSetOrdering(t *testing.T) {
	shapes := map[int][][]Vec3{
		4: {{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}},
		2: {{{0, 0, 0}, {1, 0, 0}}, {{0, 0, 0}, {0, 1, 0}}},
	}
	s := NewGeneratedSet(shapes)
	require.Equal(t, []string{"gen1", "gen2", "gen3"}, s.IDs())

	p, err := s.Lookup("gen3")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Size())
	assert.Equal(t, "Size 4 (#gen3)", p.Name)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, p.Color)

	first, _ := s.Lookup("gen1")
	second, _ := s.Lookup("gen2")
	assert.NotEqual(t, first.Color, second.Color)
}

func TestParseHexColor(t *testing.T) {
	r, g, b := ParseHexColor("#FFA500")
	assert.Equal(t, []int{255, 165, 0}, []int{r, g, b})

	r, g, b = ParseHexColor("orange")
	assert.Equal(t, []int{128, 128, 128}, []int{r, g, b})
}
