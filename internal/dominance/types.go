package dominance

import "errors"

// ErrInvalidProbability indicates a prior probability is outside [0, 1].
var ErrInvalidProbability = errors.New("probability must be between 0 and 1")

// ErrMissingRand indicates no random source was provided for a draw.
var ErrMissingRand = errors.New("a random source must be provided")

// ErrMissingConstraint indicates an inference request had no acceptance constraint.
var ErrMissingConstraint = errors.New("an acceptance constraint must be provided")

// ErrInvalidBudget indicates a negative accepted-sample target or draw budget.
var ErrInvalidBudget = errors.New("target accepted and max draws must be non-negative")

// ErrInvalidWorkers indicates a non-positive parallel worker count.
var ErrInvalidWorkers = errors.New("worker count must be positive")

// ErrInsufficientSamples indicates the draw budget ran out before the
// accepted-sample target was reached. The result returned alongside it holds
// the valid partial histogram.
var ErrInsufficientSamples = errors.New("draw budget exhausted before reaching target accepted samples")

// ErrNoAcceptedMass indicates a constraint rejects the entire prior support,
// leaving the exact posterior undefined.
var ErrNoAcceptedMass = errors.New("constraint rejects the entire prior support")

// Prior holds the marginal probabilities for the two interaction flags.
type Prior struct {
	// DifferentPartner is the probability the interaction partner belongs to
	// a different category than the respondent.
	DifferentPartner float64
	// Stressed is the probability the respondent reports stress.
	Stressed float64
}

// DefaultPrior returns the standard prior of the toy model.
func DefaultPrior() Prior {
	return Prior{DifferentPartner: 0.5, Stressed: 0.3}
}

// Validate checks that both marginal probabilities lie in [0, 1].
func (p Prior) Validate() error {
	if p.DifferentPartner < 0 || p.DifferentPartner > 1 {
		return ErrInvalidProbability
	}
	if p.Stressed < 0 || p.Stressed > 1 {
		return ErrInvalidProbability
	}
	return nil
}

// Sample is one simulated dyadic interaction. Dominance is always the value
// of the score lookup for the two flags; it is never set independently.
type Sample struct {
	DifferentPartner bool
	Stressed         bool
	Dominance        int
}

// Constraint decides whether a sample is consistent with an observation.
type Constraint func(Sample) bool

// MinDominance returns a constraint accepting samples whose dominance score
// is at least threshold.
func MinDominance(threshold int) Constraint {
	return func(sample Sample) bool {
		return sample.Dominance >= threshold
	}
}

// Histogram counts accepted samples per partner flag.
type Histogram struct {
	DifferentPartner int
	SamePartner      int
}

// Total returns the number of accepted samples in the histogram.
func (h Histogram) Total() int {
	return h.DifferentPartner + h.SamePartner
}

// ProportionDifferent returns the empirical share of accepted samples with a
// different-category partner. An empty histogram yields 0.
func (h Histogram) ProportionDifferent() float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	return float64(h.DifferentPartner) / float64(total)
}

// InferRequest describes a rejection-sampling inference run.
type InferRequest struct {
	Prior Prior
	// Accept is the observation constraint conditioning the posterior.
	Accept Constraint
	// TargetAccepted is the number of accepted samples to collect.
	TargetAccepted int
	// MaxDraws bounds the total number of prior draws attempted.
	MaxDraws int
	// Seed initializes the random source for deterministic replay.
	Seed int64
}

// InferResult captures the outcome of a rejection-sampling run.
type InferResult struct {
	Histogram Histogram
	// Draws is the total number of prior draws attempted.
	Draws int
	// Accepted is the number of samples the constraint accepted.
	Accepted int
	// Complete reports whether the accepted-sample target was reached.
	Complete bool
}

// ExactRequest describes an exact posterior computation.
type ExactRequest struct {
	Prior  Prior
	Accept Constraint
}

// CellMass captures the prior mass of one cell of the input space.
type CellMass struct {
	Sample   Sample
	Mass     float64
	Accepted bool
}

// ExactResult captures the exact conditional distribution of the partner flag.
type ExactResult struct {
	// Cells lists all four input cells in a fixed order.
	Cells []CellMass
	// AcceptedMass is the total prior mass the constraint accepts.
	AcceptedMass float64
	// DifferentMass is the accepted mass with a different-category partner.
	DifferentMass float64
	// SameMass is the accepted mass with a same-category partner.
	SameMass float64
	// PosteriorDifferent is DifferentMass normalized by AcceptedMass.
	PosteriorDifferent float64
}

// ModelMetadata captures the model conventions for inference interpretation.
type ModelMetadata struct {
	Model            string
	ModelVersion     string
	PartnerVariable  string
	StressVariable   string
	OutcomeVariable  string
	ScoreRule        string
	DefaultPrior     Prior
	DefaultThreshold int
}
