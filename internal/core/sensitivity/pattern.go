package sensitivity

// Pattern describes how marginals evolve as the variable die grows.
type Pattern string

const (
	// PatternDiminishing means every upgrade gains strictly less than the last.
	PatternDiminishing Pattern = "diminishing"
	// PatternIncreasing means every upgrade gains strictly more than the last.
	PatternIncreasing Pattern = "increasing"
	// PatternNonMonotonic means gains rise and fall; see peaks and troughs.
	PatternNonMonotonic Pattern = "non-monotonic"
	// PatternUndetermined means fewer than two marginals exist.
	PatternUndetermined Pattern = "undetermined"
)

// ReturnPattern summarizes the marginals for one target.
type ReturnPattern struct {
	Target  int     `json:"target"`
	Pattern Pattern `json:"pattern"`
	// Peaks and Troughs are interior transitions whose marginal is a strict
	// local maximum or minimum. Only set for non-monotonic patterns.
	Peaks   []Transition `json:"peaks,omitempty"`
	Troughs []Transition `json:"troughs,omitempty"`
}

// Patterns returns one ReturnPattern per target, in table order.
func (t Table) Patterns() []ReturnPattern {
	out := make([]ReturnPattern, 0, len(t.Targets))
	for _, target := range t.Targets {
		out = append(out, patternOf(target, t.MarginalsAt(target)))
	}
	return out
}

func patternOf(target int, marginals []Marginal) ReturnPattern {
	rp := ReturnPattern{Target: target, Pattern: PatternUndetermined}
	if len(marginals) < 2 {
		return rp
	}

	decreasing, increasing := true, true
	for i := 0; i+1 < len(marginals); i++ {
		cmp := marginals[i].Delta.Cmp(marginals[i+1].Delta)
		if cmp <= 0 {
			decreasing = false
		}
		if cmp >= 0 {
			increasing = false
		}
	}
	switch {
	case decreasing:
		rp.Pattern = PatternDiminishing
		return rp
	case increasing:
		rp.Pattern = PatternIncreasing
		return rp
	}

	rp.Pattern = PatternNonMonotonic
	for i := 1; i+1 < len(marginals); i++ {
		prev, cur, next := marginals[i-1].Delta, marginals[i].Delta, marginals[i+1].Delta
		switch {
		case cur.Cmp(prev) > 0 && cur.Cmp(next) > 0:
			rp.Peaks = append(rp.Peaks, marginals[i].Transition)
		case cur.Cmp(prev) < 0 && cur.Cmp(next) < 0:
			rp.Troughs = append(rp.Troughs, marginals[i].Transition)
		}
	}
	return rp
}
