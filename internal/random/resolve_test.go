package random

import (
	"errors"
	"testing"
)

func TestResolveSeedDefaultsToServerSeed(t *testing.T) {
	seed, source, err := ResolveSeed(nil, func() (int64, error) {
		return 123, nil
	}, false)
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if seed != 123 {
		t.Fatalf("seed = %d, want 123", seed)
	}
	if source != SeedSourceServer {
		t.Fatalf("seed source = %q, want %q", source, SeedSourceServer)
	}
}

func TestResolveSeedUsesClientSeedWhenAllowed(t *testing.T) {
	seedValue := uint64(77)
	seed, source, err := ResolveSeed(&seedValue, func() (int64, error) {
		return 123, nil
	}, true)
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if seed != int64(seedValue) {
		t.Fatalf("seed = %d, want %d", seed, seedValue)
	}
	if source != SeedSourceClient {
		t.Fatalf("seed source = %q, want %q", source, SeedSourceClient)
	}
}

func TestResolveSeedIgnoresClientSeedWhenDisallowed(t *testing.T) {
	seedValue := uint64(77)
	seed, source, err := ResolveSeed(&seedValue, func() (int64, error) {
		return 555, nil
	}, false)
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if seed != 555 {
		t.Fatalf("seed = %d, want 555", seed)
	}
	if source != SeedSourceServer {
		t.Fatalf("seed source = %q, want %q", source, SeedSourceServer)
	}
}

func TestResolveSeedRejectsOutOfRangeSeed(t *testing.T) {
	seedValue := uint64(maxSeedInt64) + 1
	_, _, err := ResolveSeed(&seedValue, func() (int64, error) {
		return 123, nil
	}, true)
	if !errors.Is(err, ErrSeedOutOfRange) {
		t.Fatalf("ResolveSeed error = %v, want %v", err, ErrSeedOutOfRange)
	}
}

func TestResolveSeedRequiresGenerator(t *testing.T) {
	if _, _, err := ResolveSeed(nil, nil, false); err == nil {
		t.Fatal("expected missing generator error")
	}
}

func TestResolveSeedPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := ResolveSeed(nil, func() (int64, error) {
		return 0, boom
	}, false)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
}

func TestNewSeedReturnsValue(t *testing.T) {
	if _, err := NewSeed(); err != nil {
		t.Fatalf("new seed: %v", err)
	}
}
