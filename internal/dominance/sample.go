package dominance

import "math/rand"

// scoreTable maps the two interaction flags to a dominance score. The first
// index is the partner flag, the second the stress flag, with false=0 and
// true=1.
var scoreTable = [2][2]int{
	{4, 6}, // same-category partner: calm, stressed
	{5, 7}, // different-category partner: calm, stressed
}

// Score maps the two interaction flags to the fixed dominance score. It is
// pure and total over the boolean domain.
func Score(differentPartner, stressed bool) int {
	return scoreTable[boolIndex(differentPartner)][boolIndex(stressed)]
}

// Draw samples one interaction from the prior.
//
// # Determinism
//
// Draw consumes exactly two values from rng in a fixed order: the partner
// flag first, then the stress flag. Given the same rng state and the same
// prior, Draw always produces the same Sample. The random source is supplied
// by the caller; Draw holds no global state.
//
// # Constraints and errors
//
//   - Both prior probabilities must lie in [0, 1], otherwise
//     ErrInvalidProbability is returned.
//   - rng must be non-nil, otherwise ErrMissingRand is returned.
func Draw(prior Prior, rng *rand.Rand) (Sample, error) {
	if err := prior.Validate(); err != nil {
		return Sample{}, err
	}
	if rng == nil {
		return Sample{}, ErrMissingRand
	}

	differentPartner := rng.Float64() < prior.DifferentPartner
	stressed := rng.Float64() < prior.Stressed

	return Sample{
		DifferentPartner: differentPartner,
		Stressed:         stressed,
		Dominance:        Score(differentPartner, stressed),
	}, nil
}

// boolIndex maps a flag to its score table index.
func boolIndex(value bool) int {
	if value {
		return 1
	}
	return 0
}
