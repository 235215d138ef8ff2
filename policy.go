package vimgolf

// Heuristic estimates the remaining cost from state to target. The search only
// returns provably shortest paths when the estimate never exceeds the true
// remaining cost; that property is the implementation's responsibility.
type Heuristic interface {
	Estimate(state, target EditorState) float64
}

// HeuristicFunc adapts a plain function to Heuristic.
type HeuristicFunc func(state, target EditorState) float64

func (f HeuristicFunc) Estimate(state, target EditorState) float64 { return f(state, target) }

// CharDiff counts differing rune positions between the linearized buffers,
// plus the difference in rune count. It is cheap but not admissible for editor
// commands that move many characters at once.
type CharDiff struct{}

func (CharDiff) Estimate(state, target EditorState) float64 {
	a, b := []rune(state.Text()), []rune(target.Text())
	if len(a) > len(b) {
		a, b = b, a
	}
	diff := len(b) - len(a)
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	return float64(diff)
}

// Zero never overestimates; with it the search degenerates to uniform-cost
// search and the optimality guarantee always holds.
type Zero struct{}

func (Zero) Estimate(EditorState, EditorState) float64 { return 0 }

// Pruning rejects candidates before or after they are sent to the oracle.
type Pruning interface {
	// ShouldPruneByBound is consulted with the incumbent bound, if one exists,
	// before the oracle is called.
	ShouldPruneByBound(gCost, bound float64, hasBound bool) bool
	// ShouldPruneByDomain is consulted on the state the oracle produced.
	ShouldPruneByDomain(state, target EditorState) bool
}

// BoundPruning cuts any partial path whose accumulated cost already reaches
// the incumbent's length. It never prunes by domain.
type BoundPruning struct{}

func (BoundPruning) ShouldPruneByBound(gCost, bound float64, hasBound bool) bool {
	return hasBound && gCost >= bound
}

func (BoundPruning) ShouldPruneByDomain(EditorState, EditorState) bool { return false }

// GrowthPruning adds a structural reject to BoundPruning: states whose text is
// more than MaxExtra characters longer than the target, or that have more than
// MaxExtraLines lines beyond it, are discarded. A negative limit disables that
// check.
type GrowthPruning struct {
	BoundPruning
	MaxExtra      int
	MaxExtraLines int
}

func (p GrowthPruning) ShouldPruneByDomain(state, target EditorState) bool {
	if p.MaxExtra >= 0 && len(state.Text())-len(target.Text()) > p.MaxExtra {
		return true
	}
	if p.MaxExtraLines >= 0 && state.LineCount()-target.LineCount() > p.MaxExtraLines {
		return true
	}
	return false
}

// Neighbors enumerates the single-step commands to try from a state.
type Neighbors interface {
	Get(state, target EditorState) []Command
}

// NeighborsFunc adapts a plain function to Neighbors.
type NeighborsFunc func(state, target EditorState) []Command

func (f NeighborsFunc) Get(state, target EditorState) []Command { return f(state, target) }

// Alphabet offers the same fixed command list from every state.
type Alphabet []Command

func (a Alphabet) Get(EditorState, EditorState) []Command { return a }

// GoalTest decides whether state satisfies target.
type GoalTest func(state, target EditorState) bool

// BufferAndMode ignores the cursor: the buffer and the mode must match.
func BufferAndMode(state, target EditorState) bool {
	return state.Mode() == target.Mode() && state.SameBuffer(target)
}

// ExactState requires buffer, cursor and mode to match.
func ExactState(state, target EditorState) bool {
	return state.Equal(target)
}
