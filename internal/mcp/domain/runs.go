package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dyadlab/interaction/internal/dominance"
	"github.com/dyadlab/interaction/internal/platform/id"
	"github.com/dyadlab/interaction/internal/random"
	"github.com/dyadlab/interaction/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReplayInput represents the MCP tool input for replaying a stored run.
type ReplayInput struct {
	RunID string `json:"run_id" jsonschema:"identifier of the persisted run to replay"`
}

// ReplayResult represents the MCP tool output for a replayed run.
type ReplayResult struct {
	RunID              string  `json:"run_id" jsonschema:"replayed run identifier"`
	Seed               int64   `json:"seed" jsonschema:"seed the run was replayed with"`
	Draws              int     `json:"draws" jsonschema:"total draws consumed by the replay"`
	Accepted           int     `json:"accepted" jsonschema:"samples passing the constraint"`
	AcceptedDifferent  int     `json:"accepted_different" jsonschema:"accepted samples with a different partner"`
	AcceptedSame       int     `json:"accepted_same" jsonschema:"accepted samples with the usual partner"`
	PosteriorDifferent float64 `json:"posterior_different" jsonschema:"estimated posterior probability of a different partner"`
	Complete           bool    `json:"complete" jsonschema:"whether the accepted target was reached within the budget"`
	Reproduced         bool    `json:"reproduced" jsonschema:"whether the replay matched the stored outcome exactly"`
}

// RunListEntry represents a readable run record entry.
type RunListEntry struct {
	ID                   string  `json:"id"`
	Seed                 int64   `json:"seed"`
	DifferentPartnerProb float64 `json:"different_partner_prob"`
	StressedProb         float64 `json:"stressed_prob"`
	Threshold            int     `json:"threshold"`
	TargetAccepted       int     `json:"target_accepted"`
	MaxDraws             int     `json:"max_draws"`
	Workers              int     `json:"workers"`
	Draws                int     `json:"draws"`
	AcceptedDifferent    int     `json:"accepted_different"`
	AcceptedSame         int     `json:"accepted_same"`
	PosteriorDifferent   float64 `json:"posterior_different"`
	Complete             bool    `json:"complete"`
	CreatedAt            string  `json:"created_at"`
}

// RunListPayload represents the MCP resource payload for run listings.
type RunListPayload struct {
	Runs []RunListEntry `json:"runs"`
}

// InferHandler executes a rejection-sampling inference request and persists
// the run so it can be replayed later.
func InferHandler(store storage.RunStore, seedFunc SeedFunc) mcp.ToolHandlerFor[InferInput, InferResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InferInput) (*mcp.CallToolResult, InferResult, error) {
		prior, err := resolvePrior(input.DifferentPartnerProb, input.StressedProb)
		if err != nil {
			return nil, InferResult{}, err
		}
		threshold := resolveThreshold(input.Threshold)

		seed, source, err := random.ResolveSeed(input.Seed, seedFunc, true)
		if err != nil {
			return nil, InferResult{}, fmt.Errorf("resolve seed: %w", err)
		}

		workers := input.Workers
		if workers <= 0 {
			workers = 1
		}

		request := dominance.InferRequest{
			Prior:          prior,
			Accept:         dominance.MinDominance(threshold),
			TargetAccepted: input.TargetAccepted,
			MaxDraws:       input.MaxDraws,
			Seed:           seed,
		}

		outcome, err := runInference(request, workers)
		if err != nil {
			return nil, InferResult{}, fmt.Errorf("inference failed: %w", err)
		}

		runID, err := id.NewID()
		if err != nil {
			return nil, InferResult{}, fmt.Errorf("generate run id: %w", err)
		}

		record := storage.RunRecord{
			ID:                   runID,
			Seed:                 seed,
			DifferentPartnerProb: prior.DifferentPartner,
			StressedProb:         prior.Stressed,
			Threshold:            threshold,
			TargetAccepted:       input.TargetAccepted,
			MaxDraws:             input.MaxDraws,
			Workers:              workers,
			Draws:                outcome.Draws,
			AcceptedDifferent:    outcome.Histogram.DifferentPartner,
			AcceptedSame:         outcome.Histogram.SamePartner,
			Complete:             outcome.Complete,
		}
		if store != nil {
			if err := store.CreateRun(ctx, record); err != nil {
				return nil, InferResult{}, fmt.Errorf("persist run: %w", err)
			}
		}

		result := InferResult{
			RunID:              runID,
			Seed:               seed,
			SeedSource:         string(source),
			Workers:            workers,
			Draws:              outcome.Draws,
			Accepted:           outcome.Accepted,
			AcceptedDifferent:  outcome.Histogram.DifferentPartner,
			AcceptedSame:       outcome.Histogram.SamePartner,
			PosteriorDifferent: outcome.Histogram.ProportionDifferent(),
			Complete:           outcome.Complete,
		}
		return nil, result, nil
	}
}

// ReplayTool defines the MCP tool schema for replaying a stored run.
func ReplayTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "run_replay",
		Description: "Re-runs a stored inference run from its seed and verifies the outcome",
	}
}

// ReplayHandler re-executes a persisted run from its stored seed and worker
// count. A fixed (seed, workers) pair pins the partitioned draw streams, so a
// faithful replay reproduces the stored outcome exactly.
func ReplayHandler(store storage.RunStore) mcp.ToolHandlerFor[ReplayInput, ReplayResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ReplayInput) (*mcp.CallToolResult, ReplayResult, error) {
		if store == nil {
			return nil, ReplayResult{}, fmt.Errorf("run store is not configured")
		}
		if input.RunID == "" {
			return nil, ReplayResult{}, fmt.Errorf("run_id is required")
		}

		record, err := store.GetRun(ctx, input.RunID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ReplayResult{}, fmt.Errorf("run %q not found", input.RunID)
			}
			return nil, ReplayResult{}, fmt.Errorf("load run: %w", err)
		}

		request := dominance.InferRequest{
			Prior: dominance.Prior{
				DifferentPartner: record.DifferentPartnerProb,
				Stressed:         record.StressedProb,
			},
			Accept:         dominance.MinDominance(record.Threshold),
			TargetAccepted: record.TargetAccepted,
			MaxDraws:       record.MaxDraws,
			Seed:           record.Seed,
		}

		outcome, err := runInference(request, record.Workers)
		if err != nil {
			return nil, ReplayResult{}, fmt.Errorf("replay failed: %w", err)
		}

		reproduced := outcome.Draws == record.Draws &&
			outcome.Histogram.DifferentPartner == record.AcceptedDifferent &&
			outcome.Histogram.SamePartner == record.AcceptedSame &&
			outcome.Complete == record.Complete

		result := ReplayResult{
			RunID:              record.ID,
			Seed:               record.Seed,
			Draws:              outcome.Draws,
			Accepted:           outcome.Accepted,
			AcceptedDifferent:  outcome.Histogram.DifferentPartner,
			AcceptedSame:       outcome.Histogram.SamePartner,
			PosteriorDifferent: outcome.Histogram.ProportionDifferent(),
			Complete:           outcome.Complete,
			Reproduced:         reproduced,
		}
		return nil, result, nil
	}
}

// RunListResource defines the MCP resource for run listings.
func RunListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "run_list",
		Title:       "Inference Runs",
		Description: "Readable listing of persisted inference runs, newest first",
		MIMEType:    "application/json",
		URI:         "runs://list",
	}
}

// RunListResourceHandler returns a readable run listing resource.
func RunListResourceHandler(store storage.RunStore) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if store == nil {
			return nil, fmt.Errorf("run store is not configured")
		}

		uri := RunListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		runs, err := store.ListRuns(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("run list failed: %w", err)
		}

		payload := RunListPayload{}
		for _, run := range runs {
			accepted := dominance.Histogram{
				DifferentPartner: run.AcceptedDifferent,
				SamePartner:      run.AcceptedSame,
			}
			payload.Runs = append(payload.Runs, RunListEntry{
				ID:                   run.ID,
				Seed:                 run.Seed,
				DifferentPartnerProb: run.DifferentPartnerProb,
				StressedProb:         run.StressedProb,
				Threshold:            run.Threshold,
				TargetAccepted:       run.TargetAccepted,
				MaxDraws:             run.MaxDraws,
				Workers:              run.Workers,
				Draws:                run.Draws,
				AcceptedDifferent:    run.AcceptedDifferent,
				AcceptedSame:         run.AcceptedSame,
				PosteriorDifferent:   accepted.ProportionDifferent(),
				Complete:             run.Complete,
				CreatedAt:            run.CreatedAt.UTC().Format(time.RFC3339),
			})
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal run list: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

// runInference dispatches between sequential and parallel execution. An
// exhausted budget is reported through the Complete flag, not as an error.
func runInference(request dominance.InferRequest, workers int) (dominance.InferResult, error) {
	if workers <= 0 {
		workers = 1
	}
	outcome, err := dominance.InferParallel(request, workers)
	if err != nil && !errors.Is(err, dominance.ErrInsufficientSamples) {
		return dominance.InferResult{}, err
	}
	return outcome, nil
}
