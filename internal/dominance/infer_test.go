package dominance

import (
	"errors"
	"math"
	"testing"
)

func TestInferZeroTargetReturnsEmptyHistogram(t *testing.T) {
	result, err := Infer(InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 0,
		MaxDraws:       1000,
		Seed:           1,
	})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if result.Draws != 0 {
		t.Fatalf("draws = %d, want 0", result.Draws)
	}
	if result.Histogram.Total() != 0 {
		t.Fatalf("histogram total = %d, want 0", result.Histogram.Total())
	}
	if !result.Complete {
		t.Fatal("expected complete result")
	}
}

func TestInferFixedSeedScenario(t *testing.T) {
	result, err := Infer(InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 4,
		MaxDraws:       1000,
		Seed:           99,
	})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if result.Histogram.Total() != 4 {
		t.Fatalf("histogram total = %d, want 4", result.Histogram.Total())
	}
	if result.Accepted != 4 {
		t.Fatalf("accepted = %d, want 4", result.Accepted)
	}
	if !result.Complete {
		t.Fatal("expected complete result")
	}
	if result.Draws < 4 || result.Draws > 1000 {
		t.Fatalf("draws = %d, want within [4, 1000]", result.Draws)
	}
}

func TestInferIsDeterministicForSeed(t *testing.T) {
	request := InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 500,
		MaxDraws:       10000,
		Seed:           1234,
	}

	first, err := Infer(request)
	if err != nil {
		t.Fatalf("first infer: %v", err)
	}
	second, err := Infer(request)
	if err != nil {
		t.Fatalf("second infer: %v", err)
	}
	if first != second {
		t.Fatalf("results diverged: %+v vs %+v", first, second)
	}
}

func TestInferConvergesToExactPosterior(t *testing.T) {
	result, err := Infer(InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 100000,
		MaxDraws:       1000000,
		Seed:           2026,
	})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}

	// P(different partner | dominance >= 5) = 0.5 / (0.5 + 0.5*0.3) = 10/13.
	want := 10.0 / 13.0
	got := result.Histogram.ProportionDifferent()
	if math.Abs(got-want) > 0.02 {
		t.Fatalf("posterior = %v, want within 0.02 of %v", got, want)
	}
}

func TestInferSignalsExhaustedBudget(t *testing.T) {
	result, err := Infer(InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(8), // unsatisfiable: max score is 7
		TargetAccepted: 1,
		MaxDraws:       200,
		Seed:           5,
	})
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("error = %v, want %v", err, ErrInsufficientSamples)
	}
	if result.Draws != 200 {
		t.Fatalf("draws = %d, want 200", result.Draws)
	}
	if result.Accepted != 0 {
		t.Fatalf("accepted = %d, want 0", result.Accepted)
	}
	if result.Complete {
		t.Fatal("expected incomplete result")
	}
}

func TestInferPartialHistogramOnExhaustion(t *testing.T) {
	result, err := Infer(InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 1000,
		MaxDraws:       50,
		Seed:           17,
	})
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("error = %v, want %v", err, ErrInsufficientSamples)
	}
	if result.Draws != 50 {
		t.Fatalf("draws = %d, want 50", result.Draws)
	}
	if result.Histogram.Total() != result.Accepted {
		t.Fatalf("histogram total = %d, want %d", result.Histogram.Total(), result.Accepted)
	}
}

func TestInferRejectsMissingConstraint(t *testing.T) {
	_, err := Infer(InferRequest{
		Prior:          DefaultPrior(),
		TargetAccepted: 1,
		MaxDraws:       10,
	})
	if !errors.Is(err, ErrMissingConstraint) {
		t.Fatalf("error = %v, want %v", err, ErrMissingConstraint)
	}
}

func TestInferRejectsNegativeBudgets(t *testing.T) {
	tests := []struct {
		name    string
		request InferRequest
	}{
		{
			name: "negative target",
			request: InferRequest{
				Prior:          DefaultPrior(),
				Accept:         MinDominance(5),
				TargetAccepted: -1,
				MaxDraws:       10,
			},
		},
		{
			name: "negative max draws",
			request: InferRequest{
				Prior:          DefaultPrior(),
				Accept:         MinDominance(5),
				TargetAccepted: 1,
				MaxDraws:       -10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Infer(tt.request); !errors.Is(err, ErrInvalidBudget) {
				t.Fatalf("error = %v, want %v", err, ErrInvalidBudget)
			}
		})
	}
}

func TestInferRejectsInvalidPrior(t *testing.T) {
	_, err := Infer(InferRequest{
		Prior:          Prior{DifferentPartner: 2, Stressed: 0.3},
		Accept:         MinDominance(5),
		TargetAccepted: 1,
		MaxDraws:       10,
	})
	if !errors.Is(err, ErrInvalidProbability) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidProbability)
	}
}

func TestInferParallelIsDeterministic(t *testing.T) {
	request := InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 1200,
		MaxDraws:       100000,
		Seed:           31,
	}

	first, err := InferParallel(request, 4)
	if err != nil {
		t.Fatalf("first parallel infer: %v", err)
	}
	second, err := InferParallel(request, 4)
	if err != nil {
		t.Fatalf("second parallel infer: %v", err)
	}
	if first != second {
		t.Fatalf("results diverged: %+v vs %+v", first, second)
	}
	if first.Accepted != 1200 {
		t.Fatalf("accepted = %d, want 1200", first.Accepted)
	}
	if !first.Complete {
		t.Fatal("expected complete result")
	}
}

func TestInferParallelConvergesToExactPosterior(t *testing.T) {
	result, err := InferParallel(InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 100000,
		MaxDraws:       1000000,
		Seed:           77,
	}, 8)
	if err != nil {
		t.Fatalf("parallel infer: %v", err)
	}

	want := 10.0 / 13.0
	got := result.Histogram.ProportionDifferent()
	if math.Abs(got-want) > 0.02 {
		t.Fatalf("posterior = %v, want within 0.02 of %v", got, want)
	}
}

func TestInferParallelSignalsExhaustedBudget(t *testing.T) {
	result, err := InferParallel(InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(8),
		TargetAccepted: 4,
		MaxDraws:       100,
		Seed:           3,
	}, 4)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("error = %v, want %v", err, ErrInsufficientSamples)
	}
	if result.Draws != 100 {
		t.Fatalf("draws = %d, want 100", result.Draws)
	}
	if result.Complete {
		t.Fatal("expected incomplete result")
	}
}

func TestInferParallelRejectsInvalidWorkers(t *testing.T) {
	request := InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 1,
		MaxDraws:       10,
	}
	for _, workers := range []int{0, -1} {
		if _, err := InferParallel(request, workers); !errors.Is(err, ErrInvalidWorkers) {
			t.Fatalf("workers %d: error = %v, want %v", workers, err, ErrInvalidWorkers)
		}
	}
}

func TestInferParallelSingleWorkerMatchesSequential(t *testing.T) {
	request := InferRequest{
		Prior:          DefaultPrior(),
		Accept:         MinDominance(5),
		TargetAccepted: 300,
		MaxDraws:       10000,
		Seed:           8,
	}

	sequential, err := Infer(request)
	if err != nil {
		t.Fatalf("sequential infer: %v", err)
	}
	parallel, err := InferParallel(request, 1)
	if err != nil {
		t.Fatalf("parallel infer: %v", err)
	}
	if sequential != parallel {
		t.Fatalf("single-worker result %+v, want %+v", parallel, sequential)
	}
}

func TestSplitBudgetPreservesTotal(t *testing.T) {
	tests := []struct {
		total   int
		workers int
	}{
		{total: 10, workers: 3},
		{total: 7, workers: 7},
		{total: 5, workers: 8},
		{total: 0, workers: 4},
	}

	for _, tt := range tests {
		shares := splitBudget(tt.total, tt.workers)
		if len(shares) != tt.workers {
			t.Fatalf("len(shares) = %d, want %d", len(shares), tt.workers)
		}
		sum := 0
		for _, share := range shares {
			if share < 0 {
				t.Fatalf("negative share in %v", shares)
			}
			sum += share
		}
		if sum != tt.total {
			t.Fatalf("sum(shares) = %d, want %d", sum, tt.total)
		}
	}
}
