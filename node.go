package vimgolf

import "github.com/pdrpinto/vimgolf/internal"

// Node is a search node. It is immutable after construction: a cheaper way to
// reach the same state is represented by a new Node.
type Node struct {
	state     EditorState
	key       string
	path      Path
	costSoFar float64
	heuristic float64
	priority  float64
	parent    *Node
}

// NewNode builds a node whose priority is costSoFar + heuristic. parent is kept
// only for diagnostics and may be nil.
func NewNode(state EditorState, path Path, costSoFar, heuristic float64, parent *Node) *Node {
	return newNode(state, state.Key(), path, costSoFar, heuristic, parent)
}

func newNode(state EditorState, key string, path Path, costSoFar, heuristic float64, parent *Node) *Node {
	return &Node{
		state:     state,
		key:       key,
		path:      path,
		costSoFar: costSoFar,
		heuristic: heuristic,
		priority:  costSoFar + heuristic,
		parent:    parent,
	}
}

func (n *Node) State() EditorState { return n.state }

// Key identifies the node's state for deduplication. It is the state's Key
// unless the oracle that produced the state reported a Fingerprint.
func (n *Node) Key() string { return n.key }

func (n *Node) Path() Path         { return n.path }
func (n *Node) CostSoFar() float64 { return n.costSoFar }
func (n *Node) Heuristic() float64 { return n.heuristic }
func (n *Node) Priority() float64  { return n.priority }
func (n *Node) Parent() *Node      { return n.parent }

// Trail returns the states from the root down to n following parent links.
func (n *Node) Trail() []EditorState {
	nodes := internal.ReconstructPath(n, func(cur *Node) (*Node, bool) {
		return cur.parent, cur.parent != nil
	})
	out := make([]EditorState, len(nodes))
	for i, nd := range nodes {
		out[i] = nd.state
	}
	return out
}
