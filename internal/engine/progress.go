package engine

// InfiniteProgress is reported for unbounded searches, which never finish
// on their own.
const InfiniteProgress = 99.99

// Progress returns how far a search has come towards its limit, in
// percent clamped to [0, 100].
func Progress(search SearchBy, depth int, nodes, elapsed int64) float64 {
	var done float64
	switch search.Kind {
	case SearchInfinite:
		return InfiniteProgress
	case SearchDepth:
		done = float64(depth)
	case SearchNodes:
		done = float64(nodes)
	case SearchMovetime:
		done = float64(elapsed)
	}
	if search.Value <= 0 {
		return 0
	}
	p := done / float64(search.Value) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
