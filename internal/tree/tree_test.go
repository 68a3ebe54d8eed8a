package tree

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderItemizedScenario(t *testing.T) {
	input := "f+++++++++|foo.txt|12\nd+++++++++|dir/|0\nf+++++++++|dir/bar.txt|24\n"
	want := strings.Join([]string{
		"|-- dir",
		"|  +-- bar.txt",
		"+-- foo.txt",
	}, "\n")
	assert.Equal(t, want, RenderItemized(input))
}

func TestRenderDeepPrefixes(t *testing.T) {
	input := strings.Join([]string{
		">f+++++++++|a/b/c.txt|1",
		">f+++++++++|a/b/d.txt|1",
		">f+++++++++|a/e.txt|1",
		">f+++++++++|z.txt|1",
	}, "\n")
	want := strings.Join([]string{
		"|-- a",
		"|  |-- b",
		"|  |  |-- c.txt",
		"|  |  +-- d.txt",
		"|  +-- e.txt",
		"+-- z.txt",
	}, "\n")
	assert.Equal(t, want, RenderItemized(input))
}

func TestRenderLastBranchUsesSpaces(t *testing.T) {
	input := "x|only/child/leaf|0"
	want := strings.Join([]string{
		"+-- only",
		"   +-- child",
		"      +-- leaf",
	}, "\n")
	assert.Equal(t, want, RenderItemized(input))
}

func TestRenderIndependentOfInputOrder(t *testing.T) {
	lines := []string{
		"f|src/main.go|10",
		"f|src/util/strings.go|10",
		"d|src/util/|0",
		"f|README.md|3",
		"f|docs/index.md|5",
		"d|docs/|0",
	}
	want := RenderItemized(strings.Join(lines, "\n"))

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), lines...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, RenderItemized(strings.Join(shuffled, "\n")))
	}
}

func TestParseItemizedSkipsHiddenAndMalformed(t *testing.T) {
	input := strings.Join([]string{
		"f+++++++++|.DS_Store|6148",
		"d+++++++++|./|0",
		"f+++++++++|./.env|10",
		"garbage line without separators",
		"",
		"f+++++++++|./keep.txt|1,024",
		"f+++++++++|nosize",
	}, "\n")
	got := ParseItemized(input)
	assert.Equal(t, []ChangeRecord{
		{Code: "f+++++++++", Path: "keep.txt", Size: 1024},
		{Code: "f+++++++++", Path: "nosize"},
	}, got)
}

func TestHiddenEntryContributesNoNode(t *testing.T) {
	assert.Equal(t, "", RenderItemized("f+++++++++|.DS_Store|6148\n"))
}

func TestEmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderItemized(""))
}

func TestInsertIsIdempotent(t *testing.T) {
	root := NewRoot()
	root.Insert("a/b")
	root.Insert("a/b")
	root.Insert("a//b/")
	assert.Len(t, root.Children(), 1)
	assert.Len(t, root.Children()[0].Children(), 1)
	assert.Equal(t, "+-- a\n   +-- b", Render(root))
}
