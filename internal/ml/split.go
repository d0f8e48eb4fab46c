package ml

import (
	"math"
	"math/rand"
	"sort"
)

// stratifiedSplit partitions sample indices into train and validation sets,
// preserving class proportions. Every class keeps at least one training
// sample.
func stratifiedSplit(labels []int, fraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))

	byClass := [2][]int{}
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}

	for _, idx := range byClass {
		if len(idx) == 0 {
			continue
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		nTest := int(math.Round(fraction * float64(len(idx))))
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test
}
