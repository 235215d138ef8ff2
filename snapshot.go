package vimgolf

// Snapshot exposes the dispatcher state at the moment a node is popped.
type Snapshot struct {
	Step     int
	Current  *Node
	Open     int
	InFlight int
	Bound    float64
	HasBound bool
}

// Observer receives one Snapshot per popped node, synchronously on the
// dispatcher goroutine; it must not block.
type Observer func(Snapshot)

func (s *search) snapshot(step int, current *Node) Snapshot {
	bound, hasBound := s.incumbent.Bound()
	return Snapshot{
		Step:     step,
		Current:  current,
		Open:     s.open.Count(),
		InFlight: s.incumbent.InFlight(),
		Bound:    bound,
		HasBound: hasBound,
	}
}
