package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/vimgolf"
	"github.com/pdrpinto/vimgolf/internal/ctxlog"
	"github.com/pdrpinto/vimgolf/internal/editor"
)

func newReplayCmd(global *globalFlags) *cobra.Command {
	var puzzleName string
	cmd := &cobra.Command{
		Use:   "replay PUZZLE.hcl KEYS",
		Short: "Apply a key sequence to a puzzle's start buffer",
		Long: `replay applies KEYS (for example "3x$p" or "cwfoo<Esc>") to the start
buffer of the puzzle and prints the resulting buffer, cursor and mode, and
whether the result matches the target.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			ctx, err := global.setup(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			p, err := loadPuzzle(args[0], puzzleName)
			if err != nil {
				return err
			}
			path, err := vimgolf.ParseKeys(args[1])
			if err != nil {
				return usageError("%v", err)
			}

			state, err := editor.Apply(p.Start, path)
			if err != nil {
				return failure("%v", err)
			}
			matches := vimgolf.BufferAndMode(state, p.Target)
			ctxlog.FromContext(ctx).Debug("Replayed keys.", "puzzle", p.Name, "keys", path.String(), "matches", matches)

			printState(cmd.OutOrStdout(), state)
			fmt.Fprintf(cmd.OutOrStdout(), "length:  %d\n", len(path))
			fmt.Fprintf(cmd.OutOrStdout(), "matches: %t\n", matches)
			return nil
		},
	}
	cmd.Flags().StringVar(&puzzleName, "puzzle", "", "Name of the puzzle when the file defines several.")
	return cmd
}

func newKeysCmd() *cobra.Command {
	var puzzleName string
	cmd := &cobra.Command{
		Use:   "keys [PUZZLE.hcl]",
		Short: "Print the keys the search tries",
		Long: `keys prints the default key alphabet, or the alphabet of a puzzle when a
puzzle file is given.`,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alphabet := vimgolf.Alphabet(vimgolf.DefaultAlphabet())
			if len(args) == 1 {
				p, err := loadPuzzle(args[0], puzzleName)
				if err != nil {
					return err
				}
				alphabet = p.Alphabet()
			}
			names := make([]string, len(alphabet))
			for i, key := range alphabet {
				names[i] = keyName(key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&puzzleName, "puzzle", "", "Name of the puzzle when the file defines several.")
	return cmd
}

// keyName renders cmd in ParseKeys notation, spelling out the space so the
// list stays readable.
func keyName(cmd vimgolf.Command) string {
	if cmd == " " {
		return "<Space>"
	}
	return cmd.String()
}

func printState(w io.Writer, state vimgolf.EditorState) {
	for i, line := range state.Lines() {
		fmt.Fprintf(w, "%3d | %s\n", i+1, line)
	}
	fmt.Fprintf(w, "cursor:  %s\n", state.Cursor())
	fmt.Fprintf(w, "mode:    %s\n", state.Mode())
}
