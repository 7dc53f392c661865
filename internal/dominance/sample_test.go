package dominance

import (
	"errors"
	"math/rand"
	"testing"
)

func TestScoreCoversAllInputPairs(t *testing.T) {
	tests := []struct {
		differentPartner bool
		stressed         bool
		want             int
	}{
		{differentPartner: true, stressed: true, want: 7},
		{differentPartner: true, stressed: false, want: 5},
		{differentPartner: false, stressed: true, want: 6},
		{differentPartner: false, stressed: false, want: 4},
	}

	for _, tt := range tests {
		got := Score(tt.differentPartner, tt.stressed)
		if got != tt.want {
			t.Fatalf("Score(%v, %v) = %d, want %d", tt.differentPartner, tt.stressed, got, tt.want)
		}
	}
}

func TestDrawDominanceMatchesScore(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		sample, err := Draw(DefaultPrior(), rng)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		want := Score(sample.DifferentPartner, sample.Stressed)
		if sample.Dominance != want {
			t.Fatalf("dominance = %d, want %d for (%v, %v)",
				sample.Dominance, want, sample.DifferentPartner, sample.Stressed)
		}
	}
}

func TestDrawIsDeterministicForSeed(t *testing.T) {
	first := rand.New(rand.NewSource(7))
	second := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		a, err := Draw(DefaultPrior(), first)
		if err != nil {
			t.Fatalf("first draw %d: %v", i, err)
		}
		b, err := Draw(DefaultPrior(), second)
		if err != nil {
			t.Fatalf("second draw %d: %v", i, err)
		}
		if a != b {
			t.Fatalf("draw %d diverged: %+v vs %+v", i, a, b)
		}
	}
}

func TestDrawDegeneratePriors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	sample, err := Draw(Prior{DifferentPartner: 1, Stressed: 1}, rng)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !sample.DifferentPartner || !sample.Stressed || sample.Dominance != 7 {
		t.Fatalf("all-true prior produced %+v", sample)
	}

	sample, err = Draw(Prior{DifferentPartner: 0, Stressed: 0}, rng)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if sample.DifferentPartner || sample.Stressed || sample.Dominance != 4 {
		t.Fatalf("all-false prior produced %+v", sample)
	}
}

func TestDrawRejectsInvalidProbability(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	invalid := []Prior{
		{DifferentPartner: -0.1, Stressed: 0.3},
		{DifferentPartner: 1.1, Stressed: 0.3},
		{DifferentPartner: 0.5, Stressed: -0.1},
		{DifferentPartner: 0.5, Stressed: 1.5},
	}

	for _, prior := range invalid {
		if _, err := Draw(prior, rng); !errors.Is(err, ErrInvalidProbability) {
			t.Fatalf("Draw(%+v) error = %v, want %v", prior, err, ErrInvalidProbability)
		}
	}
}

func TestDrawRejectsNilRand(t *testing.T) {
	if _, err := Draw(DefaultPrior(), nil); !errors.Is(err, ErrMissingRand) {
		t.Fatalf("error = %v, want %v", err, ErrMissingRand)
	}
}

func TestHistogramProportion(t *testing.T) {
	h := Histogram{DifferentPartner: 3, SamePartner: 1}
	if h.Total() != 4 {
		t.Fatalf("total = %d, want 4", h.Total())
	}
	if got := h.ProportionDifferent(); got != 0.75 {
		t.Fatalf("proportion = %v, want 0.75", got)
	}

	empty := Histogram{}
	if got := empty.ProportionDifferent(); got != 0 {
		t.Fatalf("empty proportion = %v, want 0", got)
	}
}
