package vimgolf

import "sync"

// Incumbent tracks the shortest complete path found so far and the number of
// expansions still running. Both are guarded by one mutex so the dispatcher's
// termination test reads them consistently.
type Incumbent struct {
	mu       sync.Mutex
	path     Path
	node     *Node
	found    bool
	inFlight int
}

// Consider keeps path if it is strictly shorter than the current incumbent, or
// if there is none yet. Ties keep the earlier path. It reports whether path
// became the incumbent.
func (inc *Incumbent) Consider(path Path) bool {
	return inc.consider(path, nil)
}

// ConsiderNode is Consider for a goal node; the node is kept for diagnostics.
func (inc *Incumbent) ConsiderNode(node *Node) bool {
	return inc.consider(node.path, node)
}

func (inc *Incumbent) consider(path Path, node *Node) bool {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if inc.found && len(path) >= len(inc.path) {
		return false
	}
	inc.path = path
	inc.node = node
	inc.found = true
	return true
}

// Bound is the incumbent path length, if one exists.
func (inc *Incumbent) Bound() (float64, bool) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if !inc.found {
		return 0, false
	}
	return float64(len(inc.path)), true
}

// Path returns the incumbent path and its goal node (nil when it was recorded
// through Consider).
func (inc *Incumbent) Path() (Path, *Node, bool) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return inc.path, inc.node, inc.found
}

func (inc *Incumbent) Inc() int {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	inc.inFlight++
	return inc.inFlight
}

// Dec never lets the counter go below zero.
func (inc *Incumbent) Dec() int {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if inc.inFlight > 0 {
		inc.inFlight--
	}
	return inc.inFlight
}

func (inc *Incumbent) InFlight() int {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return inc.inFlight
}
