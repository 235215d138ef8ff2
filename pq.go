package vimgolf

import (
	"container/heap"
	"sync"
)

type PriorityQueueItem struct {
	Node         *Node
	Sequence     uint64
	IndexInQueue int
}

// PriorityQueue is a binary min-heap on node priority. Equal priorities are
// ordered by insertion sequence so searches are reproducible.
type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	pi, pj := queue[i].Node.priority, queue[j].Node.priority
	if pi != pj {
		return pi < pj
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue PriorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue) Push(x any) {
	item := x.(*PriorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}

// OpenSet is the search frontier: a priority queue deduplicated by node key
// (see Node.Key). All operations are serialized by one mutex, so each call
// observes and leaves a consistent heap.
//
// Only open states are deduplicated. A state that has been popped can be added
// again; the dispatcher relies on bound pruning (and optionally its closed set)
// to keep re-expansion finite.
type OpenSet struct {
	mu       sync.Mutex
	queue    PriorityQueue
	index    map[string]*PriorityQueueItem
	sequence uint64
	changed  chan struct{}
}

// NewOpenSet returns an empty open set.
func NewOpenSet() *OpenSet {
	return &OpenSet{
		queue:   make(PriorityQueue, 0),
		index:   make(map[string]*PriorityQueueItem),
		changed: make(chan struct{}, 1),
	}
}

// Add inserts node unless a node for the same state is already open, in which
// case the first inserted node is kept whatever the costs. It reports whether
// the set changed.
func (s *OpenSet) Add(node *Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[node.key]; ok {
		return false
	}
	s.sequence++
	item := &PriorityQueueItem{Node: node, Sequence: s.sequence}
	heap.Push(&s.queue, item)
	s.index[node.key] = item
	s.signal()
	return true
}

// Peek returns the minimum-priority node without removing it.
func (s *OpenSet) Peek() (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	return s.queue[0].Node, true
}

// Pop removes and returns the minimum-priority node.
func (s *OpenSet) Pop() (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	item := heap.Pop(&s.queue).(*PriorityQueueItem)
	delete(s.index, item.Node.key)
	return item.Node, true
}

// Remove drops the open entry for node's state, if any.
func (s *OpenSet) Remove(node *Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index[node.key]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, item.IndexInQueue)
	delete(s.index, node.key)
	return true
}

// Contains reports whether node's state is currently open.
func (s *OpenSet) Contains(node *Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[node.key]
	return ok
}

func (s *OpenSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Changed receives a value after at least one successful Add since the last
// receive.
func (s *OpenSet) Changed() <-chan struct{} {
	return s.changed
}

func (s *OpenSet) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
