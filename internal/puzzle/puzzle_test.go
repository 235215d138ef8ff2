package puzzle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/vimgolf"
)

const twoPuzzles = `
puzzle "rotate" {
  description = "move the leading abc to the end"
  start       = ["abc123abc123"]
  target      = ["123abc123abc"]
  keys        = ["3", "x", "$", "p", "<Esc>", "x"]
}

puzzle "append" {
  start         = ["one", "two"]
  target        = ["one", "two!"]
  cursor        = [1, 2]
  target_cursor = [1, 3]
  mode          = "normal"
  target_mode   = "i"
}
`

func TestParse_DecodesBlocks(t *testing.T) {
	puzzles, err := Parse([]byte(twoPuzzles), "golf.hcl")
	require.NoError(t, err)
	require.Len(t, puzzles, 2)

	rotate := puzzles[0]
	assert.Equal(t, "rotate", rotate.Name)
	assert.Equal(t, "move the leading abc to the end", rotate.Description)
	assert.Equal(t, "golf.hcl", rotate.File)
	assert.Equal(t, []string{"abc123abc123"}, rotate.Start.Lines())
	assert.Equal(t, vimgolf.Cursor{}, rotate.Start.Cursor())
	assert.Equal(t, vimgolf.ModeNormal, rotate.Start.Mode())
	if diff := cmp.Diff([]vimgolf.Command{"3", "x", "$", "p", vimgolf.KeyEscape}, rotate.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	appendPuzzle := puzzles[1]
	assert.Equal(t, vimgolf.Cursor{Row: 1, Col: 2}, appendPuzzle.Start.Cursor())
	assert.Equal(t, vimgolf.Cursor{Row: 1, Col: 3}, appendPuzzle.Target.Cursor())
	assert.Equal(t, vimgolf.ModeInsert, appendPuzzle.Target.Mode())
	assert.Nil(t, appendPuzzle.Keys)
}

func TestPuzzle_Alphabet(t *testing.T) {
	puzzles, err := Parse([]byte(twoPuzzles), "golf.hcl")
	require.NoError(t, err)

	assert.Len(t, puzzles[0].Alphabet(), 5)
	assert.Equal(t, vimgolf.Alphabet(vimgolf.DefaultAlphabet()), puzzles[1].Alphabet())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax error", `puzzle "a" {`, "failed to parse HCL file"},
		{"missing target", `puzzle "a" { start = ["x"] }`, "failed to decode HCL file"},
		{"unknown attribute", `puzzle "a" {
  start  = ["x"]
  target = ["y"]
  speed  = 3
}`, "failed to decode HCL file"},
		{"no puzzles", ``, "no puzzle blocks"},
		{"duplicate name", `
puzzle "a" {
  start  = ["x"]
  target = ["y"]
}
puzzle "a" {
  start  = ["x"]
  target = ["z"]
}`, `duplicate puzzle "a"`},
		{"short cursor", `puzzle "a" {
  start  = ["x"]
  target = ["y"]
  cursor = [1]
}`, "cursor must be [row, col]"},
		{"negative cursor", `puzzle "a" {
  start  = ["x"]
  target = ["y"]
  cursor = [0, -1]
}`, "must not be negative"},
		{"bad mode", `puzzle "a" {
  start  = ["x"]
  target = ["y"]
  mode   = "operator"
}`, "mode"},
		{"bad key", `puzzle "a" {
  start  = ["x"]
  target = ["y"]
  keys   = ["<F1>"]
}`, "unknown key name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golf.hcl")
	require.NoError(t, os.WriteFile(path, []byte(twoPuzzles), 0o644))

	puzzles, err := Load(path)
	require.NoError(t, err)
	require.Len(t, puzzles, 2)
	assert.Equal(t, path, puzzles[0].File)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSelect(t *testing.T) {
	puzzles, err := Parse([]byte(twoPuzzles), "golf.hcl")
	require.NoError(t, err)

	p, err := Select(puzzles, "append")
	require.NoError(t, err)
	assert.Equal(t, "append", p.Name)

	_, err = Select(puzzles, "")
	assert.ErrorContains(t, err, "choose one by name")

	_, err = Select(puzzles, "nope")
	assert.ErrorContains(t, err, `"nope" not found`)

	only, err := Select(puzzles[:1], "")
	require.NoError(t, err)
	assert.Equal(t, "rotate", only.Name)
}
