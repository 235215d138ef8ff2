package vimgolf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundPruning(t *testing.T) {
	p := BoundPruning{}
	assert.False(t, p.ShouldPruneByBound(100, 0, false), "no incumbent, nothing to prune against")
	assert.True(t, p.ShouldPruneByBound(5.0, 5.0, true))
	assert.True(t, p.ShouldPruneByBound(6, 5.0, true))
	assert.False(t, p.ShouldPruneByBound(4.999, 5.0, true))
	assert.False(t, p.ShouldPruneByDomain(textState("anything"), textState("")))
}

func TestGrowthPruning(t *testing.T) {
	target := NewEditorState([]string{"abc"}, Cursor{}, ModeNormal)
	p := GrowthPruning{MaxExtra: 2, MaxExtraLines: 1}

	assert.True(t, p.ShouldPruneByBound(3, 3, true), "embeds bound pruning")
	assert.False(t, p.ShouldPruneByDomain(textState("abcde"), target))
	assert.True(t, p.ShouldPruneByDomain(textState("abcdef"), target))
	assert.False(t, p.ShouldPruneByDomain(NewEditorState([]string{"a", "b"}, Cursor{}, ModeNormal), target))
	assert.True(t, p.ShouldPruneByDomain(NewEditorState([]string{"", "", ""}, Cursor{}, ModeNormal), target))

	disabled := GrowthPruning{MaxExtra: -1, MaxExtraLines: -1}
	assert.False(t, disabled.ShouldPruneByDomain(textState("a very long line indeed"), target))
}

func TestCharDiff(t *testing.T) {
	h := CharDiff{}
	assert.Zero(t, h.Estimate(textState("same"), textState("same")))
	assert.Equal(t, 1.0, h.Estimate(textState("cat"), textState("cut")))
	assert.Equal(t, 2.0, h.Estimate(textState("abc"), textState("a")))
	assert.Equal(t, 3.0, h.Estimate(textState("ab"), textState("ba!")))
	assert.Equal(t, h.Estimate(textState("xy"), textState("abcd")), h.Estimate(textState("abcd"), textState("xy")))
	assert.Equal(t, 1.0, h.Estimate(textState("héllo"), textState("hello")), "one rune differs")
	assert.Equal(t, 1.0, h.Estimate(textState("日本"), textState("日")), "one rune missing")

	assert.Zero(t, Zero{}.Estimate(textState("a"), textState("b")))
	custom := HeuristicFunc(func(state, target EditorState) float64 { return 7 })
	assert.Equal(t, 7.0, custom.Estimate(textState(""), textState("")))
}

func TestGoalTests(t *testing.T) {
	target := NewEditorState([]string{"abc"}, Cursor{Col: 2}, ModeNormal)
	moved := NewEditorState([]string{"abc"}, Cursor{}, ModeNormal)
	inserting := NewEditorState([]string{"abc"}, Cursor{Col: 2}, ModeInsert)

	assert.True(t, BufferAndMode(moved, target))
	assert.False(t, BufferAndMode(inserting, target))
	assert.False(t, ExactState(moved, target))
	assert.True(t, ExactState(NewEditorState([]string{"abc"}, Cursor{Col: 2}, ModeNormal), target))
}

func TestNeighbors(t *testing.T) {
	alphabet := Alphabet{"x", "p"}
	assert.Equal(t, []Command{"x", "p"}, alphabet.Get(textState("a"), textState("b")))

	fn := NeighborsFunc(func(state, target EditorState) []Command {
		if state.SameBuffer(target) {
			return nil
		}
		return []Command{"x"}
	})
	assert.Nil(t, fn.Get(textState("a"), textState("a")))
	assert.Equal(t, []Command{"x"}, fn.Get(textState("a"), textState("b")))
}
