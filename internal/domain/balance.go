package domain

import "math/rand"

// Sample is one labelled training matrix row.
type Sample struct {
	Features []float64
	Label    int
}

// Balance upsamples the minority label by sampling with replacement until
// both labels are equally represented. Every original row, minority rows
// included, appears in the output at least once; only the extra copies are
// drawn at random. Deterministic for a fixed seed. Training-time only —
// nothing at inference ever resamples.
//
// A single-label or empty input is returned as-is; there is no minority to
// lift.
func Balance(samples []Sample, seed int64) []Sample {
	var zeros, ones []Sample
	for _, s := range samples {
		if s.Label == 1 {
			ones = append(ones, s)
		} else {
			zeros = append(zeros, s)
		}
	}
	if len(zeros) == 0 || len(ones) == 0 {
		return samples
	}

	majority, minority := zeros, ones
	if len(ones) > len(zeros) {
		majority, minority = ones, zeros
	}

	rng := rand.New(rand.NewSource(seed))
	balanced := make([]Sample, 0, 2*len(majority))
	balanced = append(balanced, majority...)
	balanced = append(balanced, minority...)
	for i := len(minority); i < len(majority); i++ {
		balanced = append(balanced, minority[rng.Intn(len(minority))])
	}
	return balanced
}
