// Package storage defines persistence contracts for inference run records.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested run record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a run with the same ID is already stored.
	ErrAlreadyExists = errors.New("record already exists")
)

// RunRecord stores one rejection-sampling inference run. A record holds
// everything needed to replay the run bit-for-bit: the seed, the prior, the
// constraint threshold, the budgets, and the worker count that partitioned
// the draw streams.
type RunRecord struct {
	ID                   string
	Seed                 int64
	DifferentPartnerProb float64
	StressedProb         float64
	Threshold            int
	TargetAccepted       int
	MaxDraws             int
	Workers              int
	Draws                int
	AcceptedDifferent    int
	AcceptedSame         int
	Complete             bool
	CreatedAt            time.Time
}

// RunStore persists inference run records.
type RunStore interface {
	CreateRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
