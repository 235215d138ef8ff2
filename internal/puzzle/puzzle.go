// Package puzzle loads puzzle definitions from HCL files.
//
// A file holds one or more puzzle blocks:
//
//	puzzle "rotate" {
//	  description   = "move the leading abc to the end"
//	  start         = ["abc123abc123"]
//	  target        = ["123abc123abc"]
//	  cursor        = [0, 0]
//	  mode          = "normal"
//	  keys          = ["3", "x", "$", "p", "<Esc>"]
//	}
//
// Only start and target are required. keys restricts the commands the search
// may try; each entry is parsed with vimgolf.ParseKeys.
package puzzle

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/pdrpinto/vimgolf"
)

// Puzzle is one decoded puzzle block.
type Puzzle struct {
	Name        string
	Description string
	File        string
	Start       vimgolf.EditorState
	Target      vimgolf.EditorState
	// Keys is nil when the block does not restrict the alphabet.
	Keys []vimgolf.Command
}

// Alphabet returns the commands the search should try for this puzzle.
func (p Puzzle) Alphabet() vimgolf.Alphabet {
	if p.Keys == nil {
		return vimgolf.Alphabet(vimgolf.DefaultAlphabet())
	}
	return vimgolf.Alphabet(p.Keys)
}

type hclFile struct {
	Puzzles []*hclPuzzle `hcl:"puzzle,block"`
}

type hclPuzzle struct {
	Name         string   `hcl:"name,label"`
	Description  string   `hcl:"description,optional"`
	Start        []string `hcl:"start"`
	Target       []string `hcl:"target"`
	Cursor       []int    `hcl:"cursor,optional"`
	TargetCursor []int    `hcl:"target_cursor,optional"`
	Mode         string   `hcl:"mode,optional"`
	TargetMode   string   `hcl:"target_mode,optional"`
	Keys         []string `hcl:"keys,optional"`
}

// Load parses every puzzle in the HCL file at path.
func Load(path string) ([]Puzzle, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle file %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes puzzles from src; filename is used in diagnostics.
func Parse(src []byte, filename string) ([]Puzzle, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if len(parsed.Puzzles) == 0 {
		return nil, fmt.Errorf("no puzzle blocks in %s", filename)
	}

	seen := make(map[string]bool, len(parsed.Puzzles))
	puzzles := make([]Puzzle, 0, len(parsed.Puzzles))
	for _, block := range parsed.Puzzles {
		if seen[block.Name] {
			return nil, fmt.Errorf("duplicate puzzle %q in %s", block.Name, filename)
		}
		seen[block.Name] = true

		p, err := block.build(filename)
		if err != nil {
			return nil, fmt.Errorf("puzzle %q in %s: %w", block.Name, filename, err)
		}
		puzzles = append(puzzles, p)
	}
	return puzzles, nil
}

func (b *hclPuzzle) build(filename string) (Puzzle, error) {
	cursor, err := decodeCursor("cursor", b.Cursor)
	if err != nil {
		return Puzzle{}, err
	}
	targetCursor, err := decodeCursor("target_cursor", b.TargetCursor)
	if err != nil {
		return Puzzle{}, err
	}
	mode, err := vimgolf.ParseMode(b.Mode)
	if err != nil {
		return Puzzle{}, fmt.Errorf("mode: %w", err)
	}
	targetMode, err := vimgolf.ParseMode(b.TargetMode)
	if err != nil {
		return Puzzle{}, fmt.Errorf("target_mode: %w", err)
	}

	p := Puzzle{
		Name:        b.Name,
		Description: b.Description,
		File:        filename,
		Start:       vimgolf.NewEditorState(b.Start, cursor, mode),
		Target:      vimgolf.NewEditorState(b.Target, targetCursor, targetMode),
	}
	if b.Keys != nil {
		p.Keys, err = decodeKeys(b.Keys)
		if err != nil {
			return Puzzle{}, err
		}
	}
	return p, nil
}

func decodeCursor(attr string, pos []int) (vimgolf.Cursor, error) {
	switch {
	case len(pos) == 0:
		return vimgolf.Cursor{}, nil
	case len(pos) != 2:
		return vimgolf.Cursor{}, fmt.Errorf("%s must be [row, col], got %d values", attr, len(pos))
	case pos[0] < 0 || pos[1] < 0:
		return vimgolf.Cursor{}, fmt.Errorf("%s must not be negative, got %v", attr, pos)
	}
	return vimgolf.Cursor{Row: pos[0], Col: pos[1]}, nil
}

// decodeKeys flattens the key entries into a duplicate-free alphabet, keeping
// the order in which keys first appear.
func decodeKeys(entries []string) ([]vimgolf.Command, error) {
	seen := make(map[vimgolf.Command]bool)
	keys := make([]vimgolf.Command, 0, len(entries))
	for _, entry := range entries {
		path, err := vimgolf.ParseKeys(entry)
		if err != nil {
			return nil, fmt.Errorf("keys: %w", err)
		}
		for _, cmd := range path {
			if !seen[cmd] {
				seen[cmd] = true
				keys = append(keys, cmd)
			}
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("keys: at least one key is required when the attribute is set")
	}
	return keys, nil
}

// Select returns the puzzle called name. An empty name is allowed only when
// there is exactly one puzzle.
func Select(puzzles []Puzzle, name string) (Puzzle, error) {
	if name == "" {
		if len(puzzles) == 1 {
			return puzzles[0], nil
		}
		return Puzzle{}, fmt.Errorf("%d puzzles defined; choose one by name", len(puzzles))
	}
	for _, p := range puzzles {
		if p.Name == name {
			return p, nil
		}
	}
	return Puzzle{}, fmt.Errorf("puzzle %q not found", name)
}
