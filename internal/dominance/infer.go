package dominance

import (
	"errors"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Infer approximates the posterior distribution of the partner flag by
// rejection sampling: prior draws are tested against the request constraint
// and accepted draws accumulate in the result histogram.
//
// # Determinism
//
// Infer is deterministic with respect to the Seed field. Given the same Seed,
// Prior, and constraint, Infer always produces the same InferResult.
//
// # Termination
//
// Sampling stops once TargetAccepted samples have been accepted or MaxDraws
// total draws have been attempted, whichever comes first. A TargetAccepted of
// zero returns an empty, complete histogram without consuming any draws. A
// MaxDraws of zero is a zero budget, not an unlimited one.
//
// When the draw budget runs out before the target is reached, Infer returns
// the valid partial result together with ErrInsufficientSamples so callers
// can decide whether to extend the budget or accept the approximation.
func Infer(request InferRequest) (InferResult, error) {
	if err := request.Prior.Validate(); err != nil {
		return InferResult{}, err
	}
	if request.Accept == nil {
		return InferResult{}, ErrMissingConstraint
	}
	if request.TargetAccepted < 0 || request.MaxDraws < 0 {
		return InferResult{}, ErrInvalidBudget
	}

	result := InferResult{}
	if request.TargetAccepted == 0 {
		result.Complete = true
		return result, nil
	}

	rng := rand.New(rand.NewSource(request.Seed))
	for result.Draws < request.MaxDraws && result.Accepted < request.TargetAccepted {
		sample, err := Draw(request.Prior, rng)
		if err != nil {
			return InferResult{}, err
		}
		result.Draws++

		if !request.Accept(sample) {
			continue
		}
		result.Accepted++
		if sample.DifferentPartner {
			result.Histogram.DifferentPartner++
		} else {
			result.Histogram.SamePartner++
		}
	}

	if result.Accepted < request.TargetAccepted {
		return result, ErrInsufficientSamples
	}
	result.Complete = true
	return result, nil
}

// InferParallel distributes independent draws across workers and merges the
// per-worker histograms by summation.
//
// Each worker runs a sequential inference with its own random source seeded
// at Seed+i, so a fixed (Seed, workers) pair always reproduces the same
// merged result. The accepted-sample target and the draw budget are split
// across workers up front; totals in the merged result are the sums of the
// per-worker totals. A run where any worker exhausts its share of the budget
// returns the merged partial result with ErrInsufficientSamples.
func InferParallel(request InferRequest, workers int) (InferResult, error) {
	if workers <= 0 {
		return InferResult{}, ErrInvalidWorkers
	}
	if workers == 1 {
		return Infer(request)
	}
	if err := request.Prior.Validate(); err != nil {
		return InferResult{}, err
	}
	if request.Accept == nil {
		return InferResult{}, ErrMissingConstraint
	}
	if request.TargetAccepted < 0 || request.MaxDraws < 0 {
		return InferResult{}, ErrInvalidBudget
	}
	if request.TargetAccepted == 0 {
		return InferResult{Complete: true}, nil
	}

	targets := splitBudget(request.TargetAccepted, workers)
	budgets := splitBudget(request.MaxDraws, workers)

	results := make([]InferResult, workers)
	exhausted := make([]bool, workers)

	group := new(errgroup.Group)
	for i := 0; i < workers; i++ {
		worker := i
		group.Go(func() error {
			sub := request
			sub.Seed = request.Seed + int64(worker)
			sub.TargetAccepted = targets[worker]
			sub.MaxDraws = budgets[worker]

			result, err := Infer(sub)
			if err != nil && !errors.Is(err, ErrInsufficientSamples) {
				return err
			}
			results[worker] = result
			exhausted[worker] = err != nil
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return InferResult{}, err
	}

	merged := InferResult{}
	partial := false
	for i := 0; i < workers; i++ {
		merged.Histogram.DifferentPartner += results[i].Histogram.DifferentPartner
		merged.Histogram.SamePartner += results[i].Histogram.SamePartner
		merged.Draws += results[i].Draws
		merged.Accepted += results[i].Accepted
		if exhausted[i] {
			partial = true
		}
	}
	if partial {
		return merged, ErrInsufficientSamples
	}
	merged.Complete = true
	return merged, nil
}

// splitBudget divides total across workers, assigning the remainder to the
// lowest-indexed workers one unit at a time.
func splitBudget(total, workers int) []int {
	shares := make([]int, workers)
	base := total / workers
	remainder := total % workers
	for i := 0; i < workers; i++ {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares
}
