package dominance

// ExactPosterior computes the exact conditional distribution of the partner
// flag under the request constraint by enumerating all four input cells.
//
// Each cell's prior mass is the product of its two flag probabilities. The
// accepted mass per partner flag is summed across cells and normalized, so
// the result is the analytic limit of the rejection sampler for the same
// prior and constraint. Cells are listed in a fixed order: same partner
// before different partner, calm before stressed.
func ExactPosterior(request ExactRequest) (ExactResult, error) {
	if err := request.Prior.Validate(); err != nil {
		return ExactResult{}, err
	}
	if request.Accept == nil {
		return ExactResult{}, ErrMissingConstraint
	}

	flags := []bool{false, true}
	result := ExactResult{Cells: make([]CellMass, 0, 4)}

	for _, differentPartner := range flags {
		for _, stressed := range flags {
			sample := Sample{
				DifferentPartner: differentPartner,
				Stressed:         stressed,
				Dominance:        Score(differentPartner, stressed),
			}
			mass := flagMass(request.Prior.DifferentPartner, differentPartner) *
				flagMass(request.Prior.Stressed, stressed)
			accepted := request.Accept(sample)

			result.Cells = append(result.Cells, CellMass{
				Sample:   sample,
				Mass:     mass,
				Accepted: accepted,
			})
			if !accepted {
				continue
			}
			result.AcceptedMass += mass
			if differentPartner {
				result.DifferentMass += mass
			} else {
				result.SameMass += mass
			}
		}
	}

	if result.AcceptedMass == 0 {
		return result, ErrNoAcceptedMass
	}
	result.PosteriorDifferent = result.DifferentMass / result.AcceptedMass
	return result, nil
}

// flagMass returns the prior mass of one flag value.
func flagMass(probability float64, value bool) float64 {
	if value {
		return probability
	}
	return 1 - probability
}

// Metadata returns the model conventions for inference interpretation.
func Metadata() ModelMetadata {
	return ModelMetadata{
		Model:            "dyad-dominance",
		ModelVersion:     "1.0",
		PartnerVariable:  "different_partner",
		StressVariable:   "stressed",
		OutcomeVariable:  "dominance",
		ScoreRule:        "fixed 2x2 lookup over (different_partner, stressed): tt=7 tf=5 ft=6 ff=4",
		DefaultPrior:     DefaultPrior(),
		DefaultThreshold: 5,
	}
}
