package evaluation

// RecallAtK computes Recall@K: the fraction of expected centers found in the top-K ranked results.
// Returns 0.0 if expected is empty.
func RecallAtK(expected, ranked []string, k int) float64 {
	if len(expected) == 0 {
		return 0.0
	}

	want := toSet(expected)
	total := len(want)
	found := 0
	for _, id := range topK(ranked, k) {
		if _, ok := want[id]; ok {
			found++
			delete(want, id)
		}
	}

	return float64(found) / float64(total)
}

// MRRAtK computes the reciprocal rank of the first expected center in the top-K ranked results.
// Returns 0.0 if no expected center is ranked in top-K.
func MRRAtK(expected, ranked []string, k int) float64 {
	if len(expected) == 0 || len(ranked) == 0 {
		return 0.0
	}

	want := toSet(expected)
	for i, id := range topK(ranked, k) {
		if _, ok := want[id]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

// TopHit reports whether the best ranked center is the best expected one.
func TopHit(expected, ranked []string) bool {
	return len(expected) > 0 && len(ranked) > 0 && expected[0] == ranked[0]
}

func topK(ranked []string, k int) []string {
	if k >= 0 && k < len(ranked) {
		return ranked[:k]
	}
	return ranked
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
