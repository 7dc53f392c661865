package domain

import (
	"context"
	"errors"
	"fmt"
	mathrand "math/rand"

	"github.com/dyadlab/interaction/internal/dominance"
	"github.com/dyadlab/interaction/internal/random"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// maxSampleCount caps the number of draws a single sample call returns.
	maxSampleCount = 1000
	// defaultSampleCount is used when the caller omits a count.
	defaultSampleCount = 1
)

// ScoreInput represents the MCP tool input for deterministic scoring.
type ScoreInput struct {
	DifferentPartner bool `json:"different_partner" jsonschema:"whether the partner differs from the usual one"`
	Stressed         bool `json:"stressed" jsonschema:"whether the subject is stressed"`
}

// ScoreResult represents the MCP tool output for deterministic scoring.
type ScoreResult struct {
	DifferentPartner bool `json:"different_partner" jsonschema:"partner flag echoed back"`
	Stressed         bool `json:"stressed" jsonschema:"stress flag echoed back"`
	Dominance        int  `json:"dominance" jsonschema:"dominance score for the flag pair"`
}

// SampleInput represents the MCP tool input for prior sampling.
type SampleInput struct {
	DifferentPartnerProb *float64 `json:"different_partner_prob,omitempty" jsonschema:"prior probability of a different partner, defaults to 0.5"`
	StressedProb         *float64 `json:"stressed_prob,omitempty" jsonschema:"prior probability of stress, defaults to 0.3"`
	Count                int      `json:"count,omitempty" jsonschema:"number of samples to draw, defaults to 1, capped at 1000"`
	Seed                 *uint64  `json:"seed,omitempty" jsonschema:"optional seed for reproducible draws"`
}

// SampleEntry represents a single drawn sample.
type SampleEntry struct {
	DifferentPartner bool `json:"different_partner"`
	Stressed         bool `json:"stressed"`
	Dominance        int  `json:"dominance"`
}

// SampleResult represents the MCP tool output for prior sampling.
type SampleResult struct {
	Samples    []SampleEntry `json:"samples" jsonschema:"drawn samples in order"`
	Seed       int64         `json:"seed" jsonschema:"seed used for the draws"`
	SeedSource string        `json:"seed_source" jsonschema:"whether the seed came from the server or the client"`
}

// InferInput represents the MCP tool input for rejection-sampling inference.
type InferInput struct {
	DifferentPartnerProb *float64 `json:"different_partner_prob,omitempty" jsonschema:"prior probability of a different partner, defaults to 0.5"`
	StressedProb         *float64 `json:"stressed_prob,omitempty" jsonschema:"prior probability of stress, defaults to 0.3"`
	Threshold            *int     `json:"threshold,omitempty" jsonschema:"minimum dominance for acceptance, defaults to 5"`
	TargetAccepted       int      `json:"target_accepted" jsonschema:"accepted samples to collect before stopping"`
	MaxDraws             int      `json:"max_draws" jsonschema:"hard budget on total draws"`
	Seed                 *uint64  `json:"seed,omitempty" jsonschema:"optional seed for reproducible inference"`
	Workers              int      `json:"workers,omitempty" jsonschema:"parallel workers, defaults to 1"`
}

// InferResult represents the MCP tool output for rejection-sampling inference.
type InferResult struct {
	RunID              string  `json:"run_id" jsonschema:"persisted run identifier"`
	Seed               int64   `json:"seed" jsonschema:"seed used for the run"`
	SeedSource         string  `json:"seed_source" jsonschema:"whether the seed came from the server or the client"`
	Workers            int     `json:"workers" jsonschema:"worker count that partitioned the draw streams"`
	Draws              int     `json:"draws" jsonschema:"total draws consumed"`
	Accepted           int     `json:"accepted" jsonschema:"samples passing the constraint"`
	AcceptedDifferent  int     `json:"accepted_different" jsonschema:"accepted samples with a different partner"`
	AcceptedSame       int     `json:"accepted_same" jsonschema:"accepted samples with the usual partner"`
	PosteriorDifferent float64 `json:"posterior_different" jsonschema:"estimated posterior probability of a different partner"`
	Complete           bool    `json:"complete" jsonschema:"whether the accepted target was reached within the budget"`
}

// ExactInput represents the MCP tool input for exact posterior enumeration.
type ExactInput struct {
	DifferentPartnerProb *float64 `json:"different_partner_prob,omitempty" jsonschema:"prior probability of a different partner, defaults to 0.5"`
	StressedProb         *float64 `json:"stressed_prob,omitempty" jsonschema:"prior probability of stress, defaults to 0.3"`
	Threshold            *int     `json:"threshold,omitempty" jsonschema:"minimum dominance for acceptance, defaults to 5"`
}

// ExactCell represents one enumerated flag combination.
type ExactCell struct {
	DifferentPartner bool    `json:"different_partner"`
	Stressed         bool    `json:"stressed"`
	Dominance        int     `json:"dominance"`
	Mass             float64 `json:"mass"`
	Accepted         bool    `json:"accepted"`
}

// ExactResult represents the MCP tool output for exact posterior enumeration.
type ExactResult struct {
	Cells              []ExactCell `json:"cells" jsonschema:"all flag combinations with prior mass"`
	AcceptedMass       float64     `json:"accepted_mass" jsonschema:"total prior mass passing the constraint"`
	PosteriorDifferent float64     `json:"posterior_different" jsonschema:"exact posterior probability of a different partner"`
}

// MetadataInput represents the MCP tool input for model metadata.
type MetadataInput struct{}

// MetadataResult represents the MCP tool output for model metadata.
type MetadataResult struct {
	Model                string  `json:"model" jsonschema:"model identifier"`
	ModelVersion         string  `json:"model_version" jsonschema:"model version"`
	PartnerVariable      string  `json:"partner_variable" jsonschema:"name of the partner flag"`
	StressVariable       string  `json:"stress_variable" jsonschema:"name of the stress flag"`
	OutcomeVariable      string  `json:"outcome_variable" jsonschema:"name of the scored outcome"`
	ScoreRule            string  `json:"score_rule" jsonschema:"description of the scoring rule"`
	DifferentPartnerProb float64 `json:"different_partner_prob" jsonschema:"default partner prior"`
	StressedProb         float64 `json:"stressed_prob" jsonschema:"default stress prior"`
	DefaultThreshold     int     `json:"default_threshold" jsonschema:"default dominance threshold"`
}

// SeedFunc produces server-side seeds for sampling tools.
type SeedFunc func() (int64, error)

// ScoreTool defines the MCP tool schema for deterministic scoring.
func ScoreTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dominance_score",
		Description: "Computes the deterministic dominance score for a flag pair",
	}
}

// SampleTool defines the MCP tool schema for prior sampling.
func SampleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dominance_sample",
		Description: "Draws samples from the prior and scores each one",
	}
}

// InferTool defines the MCP tool schema for rejection-sampling inference.
func InferTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dominance_infer",
		Description: "Estimates the partner posterior by rejection sampling and persists the run",
	}
}

// ExactTool defines the MCP tool schema for exact posterior enumeration.
func ExactTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dominance_exact",
		Description: "Enumerates all flag combinations and computes the exact posterior",
	}
}

// MetadataTool defines the MCP tool schema for model metadata.
func MetadataTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "model_metadata",
		Description: "Describes the generative model, its priors, and its scoring rule",
	}
}

// ScoreHandler executes a deterministic scoring request.
func ScoreHandler() mcp.ToolHandlerFor[ScoreInput, ScoreResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScoreInput) (*mcp.CallToolResult, ScoreResult, error) {
		result := ScoreResult{
			DifferentPartner: input.DifferentPartner,
			Stressed:         input.Stressed,
			Dominance:        dominance.Score(input.DifferentPartner, input.Stressed),
		}
		return nil, result, nil
	}
}

// SampleHandler executes a prior sampling request.
func SampleHandler(seedFunc SeedFunc) mcp.ToolHandlerFor[SampleInput, SampleResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SampleInput) (*mcp.CallToolResult, SampleResult, error) {
		prior, err := resolvePrior(input.DifferentPartnerProb, input.StressedProb)
		if err != nil {
			return nil, SampleResult{}, err
		}

		count := input.Count
		if count <= 0 {
			count = defaultSampleCount
		}
		if count > maxSampleCount {
			count = maxSampleCount
		}

		seed, source, err := random.ResolveSeed(input.Seed, seedFunc, true)
		if err != nil {
			return nil, SampleResult{}, fmt.Errorf("resolve seed: %w", err)
		}

		rng := mathrand.New(mathrand.NewSource(seed))
		result := SampleResult{
			Samples:    make([]SampleEntry, 0, count),
			Seed:       seed,
			SeedSource: string(source),
		}
		for i := 0; i < count; i++ {
			sample, err := dominance.Draw(prior, rng)
			if err != nil {
				return nil, SampleResult{}, fmt.Errorf("draw sample: %w", err)
			}
			result.Samples = append(result.Samples, SampleEntry{
				DifferentPartner: sample.DifferentPartner,
				Stressed:         sample.Stressed,
				Dominance:        sample.Dominance,
			})
		}

		return nil, result, nil
	}
}

// ExactHandler executes an exact posterior enumeration request.
func ExactHandler() mcp.ToolHandlerFor[ExactInput, ExactResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ExactInput) (*mcp.CallToolResult, ExactResult, error) {
		prior, err := resolvePrior(input.DifferentPartnerProb, input.StressedProb)
		if err != nil {
			return nil, ExactResult{}, err
		}
		threshold := resolveThreshold(input.Threshold)

		exact, err := dominance.ExactPosterior(dominance.ExactRequest{
			Prior:  prior,
			Accept: dominance.MinDominance(threshold),
		})
		if err != nil {
			return nil, ExactResult{}, fmt.Errorf("exact posterior: %w", err)
		}

		result := ExactResult{
			Cells:              make([]ExactCell, 0, len(exact.Cells)),
			AcceptedMass:       exact.AcceptedMass,
			PosteriorDifferent: exact.PosteriorDifferent,
		}
		for _, cell := range exact.Cells {
			result.Cells = append(result.Cells, ExactCell{
				DifferentPartner: cell.Sample.DifferentPartner,
				Stressed:         cell.Sample.Stressed,
				Dominance:        cell.Sample.Dominance,
				Mass:             cell.Mass,
				Accepted:         cell.Accepted,
			})
		}

		return nil, result, nil
	}
}

// MetadataHandler executes a model metadata request.
func MetadataHandler() mcp.ToolHandlerFor[MetadataInput, MetadataResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ MetadataInput) (*mcp.CallToolResult, MetadataResult, error) {
		meta := dominance.Metadata()
		result := MetadataResult{
			Model:                meta.Model,
			ModelVersion:         meta.ModelVersion,
			PartnerVariable:      meta.PartnerVariable,
			StressVariable:       meta.StressVariable,
			OutcomeVariable:      meta.OutcomeVariable,
			ScoreRule:            meta.ScoreRule,
			DifferentPartnerProb: meta.DefaultPrior.DifferentPartner,
			StressedProb:         meta.DefaultPrior.Stressed,
			DefaultThreshold:     meta.DefaultThreshold,
		}
		return nil, result, nil
	}
}

// resolvePrior builds a validated prior from optional tool inputs.
func resolvePrior(differentPartner, stressed *float64) (dominance.Prior, error) {
	prior := dominance.DefaultPrior()
	if differentPartner != nil {
		prior.DifferentPartner = *differentPartner
	}
	if stressed != nil {
		prior.Stressed = *stressed
	}
	if err := prior.Validate(); err != nil {
		if errors.Is(err, dominance.ErrInvalidProbability) {
			return dominance.Prior{}, fmt.Errorf("prior probabilities must be within [0, 1]: %w", err)
		}
		return dominance.Prior{}, err
	}
	return prior, nil
}

// resolveThreshold applies the default dominance threshold.
func resolveThreshold(threshold *int) int {
	if threshold != nil {
		return *threshold
	}
	return dominance.Metadata().DefaultThreshold
}
