// Package dominance provides the generative model and inference mechanics for
// dyadic interaction dominance scores.
//
// The model relates two interaction attributes (partner category and
// self-reported stress) to a behavioral dominance score through a fixed 2x2
// lookup. Both attributes are Bernoulli draws from a configurable prior.
//
// # Core Mechanics
//
// A Sample is one simulated interaction. Its Dominance field is always the
// pure function of its two flags:
//   - different partner, stressed:  7
//   - different partner, calm:      5
//   - same partner, stressed:       6
//   - same partner, calm:           4
//
// # Inference
//
// Conditioning on an observed outcome constraint is performed by rejection
// sampling: samples are drawn from the prior and discarded unless the
// constraint accepts them, and the surviving draws form an empirical
// posterior histogram over the partner flag. As the accepted-sample target
// grows, the normalized histogram converges to the true conditional
// distribution under the prior and the lookup table.
//
// # Features
//
// This package includes utilities for:
//   - Sampling: deterministic seeds for reproducible draws.
//   - Rejection inference: bounded draw budgets with explicit partial-result
//     signaling when the budget runs out.
//   - Exact posteriors: enumerating the four-cell input space and weighting
//     each cell by its prior mass.
//   - Model metadata: the conventions needed to interpret inference results.
package dominance
