package internal

// ReconstructPath walks predecessor links from current back to the root and
// returns the chain in root-first order. parent reports false once the root
// has been reached.
func ReconstructPath[T any](current T, parent func(T) (T, bool)) []T {
	path := []T{current}
	for {
		previous, ok := parent(current)
		if !ok {
			break
		}
		path = append(path, previous)
		current = previous
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
