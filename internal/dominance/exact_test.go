package dominance

import (
	"errors"
	"math"
	"testing"
)

func TestExactPosteriorDefaultModel(t *testing.T) {
	result, err := ExactPosterior(ExactRequest{
		Prior:  DefaultPrior(),
		Accept: MinDominance(5),
	})
	if err != nil {
		t.Fatalf("exact posterior: %v", err)
	}

	// dominance >= 5 rejects only (same partner, calm), mass 0.5*0.7 = 0.35.
	if math.Abs(result.AcceptedMass-0.65) > 1e-12 {
		t.Fatalf("accepted mass = %v, want 0.65", result.AcceptedMass)
	}
	if math.Abs(result.DifferentMass-0.5) > 1e-12 {
		t.Fatalf("different mass = %v, want 0.5", result.DifferentMass)
	}
	if math.Abs(result.SameMass-0.15) > 1e-12 {
		t.Fatalf("same mass = %v, want 0.15", result.SameMass)
	}
	want := 10.0 / 13.0
	if math.Abs(result.PosteriorDifferent-want) > 1e-12 {
		t.Fatalf("posterior = %v, want %v", result.PosteriorDifferent, want)
	}
}

func TestExactPosteriorEnumeratesAllCells(t *testing.T) {
	result, err := ExactPosterior(ExactRequest{
		Prior:  DefaultPrior(),
		Accept: MinDominance(0),
	})
	if err != nil {
		t.Fatalf("exact posterior: %v", err)
	}
	if len(result.Cells) != 4 {
		t.Fatalf("cells = %d, want 4", len(result.Cells))
	}

	totalMass := 0.0
	seen := make(map[[2]bool]bool)
	for _, cell := range result.Cells {
		totalMass += cell.Mass
		key := [2]bool{cell.Sample.DifferentPartner, cell.Sample.Stressed}
		if seen[key] {
			t.Fatalf("duplicate cell %+v", cell.Sample)
		}
		seen[key] = true
		if want := Score(cell.Sample.DifferentPartner, cell.Sample.Stressed); cell.Sample.Dominance != want {
			t.Fatalf("cell dominance = %d, want %d", cell.Sample.Dominance, want)
		}
	}
	if math.Abs(totalMass-1) > 1e-12 {
		t.Fatalf("total mass = %v, want 1", totalMass)
	}
	if math.Abs(result.PosteriorDifferent-0.5) > 1e-12 {
		t.Fatalf("unconstrained posterior = %v, want prior 0.5", result.PosteriorDifferent)
	}
}

func TestExactPosteriorRejectsEmptySupport(t *testing.T) {
	_, err := ExactPosterior(ExactRequest{
		Prior:  DefaultPrior(),
		Accept: MinDominance(8),
	})
	if !errors.Is(err, ErrNoAcceptedMass) {
		t.Fatalf("error = %v, want %v", err, ErrNoAcceptedMass)
	}
}

func TestExactPosteriorRejectsInvalidInputs(t *testing.T) {
	if _, err := ExactPosterior(ExactRequest{
		Prior:  Prior{DifferentPartner: -1, Stressed: 0.3},
		Accept: MinDominance(5),
	}); !errors.Is(err, ErrInvalidProbability) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidProbability)
	}

	if _, err := ExactPosterior(ExactRequest{Prior: DefaultPrior()}); !errors.Is(err, ErrMissingConstraint) {
		t.Fatalf("error = %v, want %v", err, ErrMissingConstraint)
	}
}

func TestMetadataDescribesModel(t *testing.T) {
	metadata := Metadata()
	if metadata.Model != "dyad-dominance" {
		t.Fatalf("model = %q, want %q", metadata.Model, "dyad-dominance")
	}
	if metadata.ModelVersion == "" {
		t.Fatal("expected non-empty model version")
	}
	if metadata.DefaultPrior != DefaultPrior() {
		t.Fatalf("default prior = %+v, want %+v", metadata.DefaultPrior, DefaultPrior())
	}
	if metadata.DefaultThreshold != 5 {
		t.Fatalf("default threshold = %d, want 5", metadata.DefaultThreshold)
	}
}
