package classifier

import (
	"math/rand"
)

// BalancedSample draws up to size rows of every label without replacement. A label with
// fewer rows contributes all of them. size <= 0 selects every row. The returned indices
// list the rows of label 0 first, then the rows of label 1.
func BalancedSample(labels []int, size int, rng *rand.Rand) []int {
	var groups [2][]int
	for i, label := range labels {
		if label == 1 {
			groups[1] = append(groups[1], i)
		} else {
			groups[0] = append(groups[0], i)
		}
	}
	var result []int
	for _, group := range groups {
		if size <= 0 || len(group) <= size {
			result = append(result, group...)
			continue
		}
		for _, pick := range rng.Perm(len(group))[:size] {
			result = append(result, group[pick])
		}
	}
	return result
}
