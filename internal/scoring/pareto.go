package scoring

// Frontier returns the names of the Pareto-optimal strategies, in input order.
// A strategy is dominated if another strategy is at least as good on every
// criterion (per its direction) and strictly better on at least one. Criteria
// with an unrecognised direction are ignored. O(n^2) dominance check.
//
// Inputs are expected to have passed the same shape checks as Evaluate.
func Frontier(names []string, scores [][]float64, directions []Direction) []string {
	if len(names) <= 1 {
		out := make([]string, len(names))
		copy(out, names)
		return out
	}

	var frontier []string
	for i := range names {
		dominated := false
		for j := range names {
			if i == j {
				continue
			}
			if dominates(scores[j], scores[i], directions) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, names[i])
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(a, b []float64, directions []Direction) bool {
	strictly := false
	for c, dir := range directions {
		var better, worse bool
		switch dir {
		case Maximize:
			better, worse = a[c] > b[c], a[c] < b[c]
		case Minimize:
			better, worse = a[c] < b[c], a[c] > b[c]
		default:
			continue
		}
		if worse {
			return false
		}
		if better {
			strictly = true
		}
	}
	return strictly
}
