package random

import (
	"errors"
	"fmt"
)

// SeedSource identifies where a resolved seed came from.
type SeedSource string

const (
	// SeedSourceServer marks a seed generated on the server for a live run.
	SeedSourceServer SeedSource = "server"
	// SeedSourceClient marks a caller-supplied seed accepted for replay.
	SeedSourceClient SeedSource = "client"
)

const maxSeedInt64 = uint64(1<<63 - 1)

// ErrSeedOutOfRange indicates a client seed outside the int64 range.
var ErrSeedOutOfRange = errors.New("seed exceeds the maximum supported value")

// ResolveSeed selects the seed for a run.
//
// A client seed is honored only when allowClient is true; otherwise a fresh
// server seed is generated with seedFunc. Client seeds above the int64 range
// are rejected with ErrSeedOutOfRange so stored seeds stay representable.
func ResolveSeed(clientSeed *uint64, seedFunc func() (int64, error), allowClient bool) (int64, SeedSource, error) {
	if clientSeed != nil && allowClient {
		if *clientSeed > maxSeedInt64 {
			return 0, "", ErrSeedOutOfRange
		}
		return int64(*clientSeed), SeedSourceClient, nil
	}

	if seedFunc == nil {
		return 0, "", errors.New("seed generator is required")
	}
	seed, err := seedFunc()
	if err != nil {
		return 0, "", fmt.Errorf("generate seed: %w", err)
	}
	return seed, SeedSourceServer, nil
}
