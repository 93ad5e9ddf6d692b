package service

import (
	"sync"
	"testing"
	"time"
)

func TestTimestampRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC)
	formatted := FormatTimestamp(at)
	if formatted != "2026-03-14 15:09:26.535897 UTC" {
		t.Fatalf("unexpected format: %s", formatted)
	}
	parsed, err := ParseTimestamp(formatted)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !parsed.Equal(at) {
		t.Fatalf("expected %v, got %v", at, parsed)
	}
}

func TestParseTimestampWithoutZone(t *testing.T) {
	// A missing zone name leaves a trailing space on the wire.
	parsed, err := ParseTimestamp("2020-01-01 00:00:00.000000 ")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Fatalf("expected %v, got %v", want, parsed)
	}
	if _, err := ParseTimestamp("a"); err == nil {
		t.Fatalf("expected parse failure for junk input")
	}
	if _, err := ParseTimestamp("2020-01-01 00:00:00"); err == nil {
		t.Fatalf("expected parse failure without microseconds")
	}
}

func TestGeneratorStrictlyIncreasing(t *testing.T) {
	var gen Generator
	prev := gen.Next()
	for i := 0; i < 10000; i++ {
		next := gen.Next()
		if !next.After(prev) {
			t.Fatalf("expected strictly increasing timestamps, got %v then %v", prev, next)
		}
		if next.Truncate(time.Microsecond) != next {
			t.Fatalf("expected microsecond resolution, got %v", next)
		}
		prev = next
	}
}

func TestGeneratorConcurrent(t *testing.T) {
	var gen Generator
	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	results := make([][]time.Time, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			out := make([]time.Time, perWorker)
			for i := range out {
				out[i] = gen.Next()
			}
			results[w] = out
		}(w)
	}
	wg.Wait()

	seen := make(map[time.Time]bool, workers*perWorker)
	for _, out := range results {
		for _, at := range out {
			if seen[at] {
				t.Fatalf("duplicate timestamp %v under concurrency", at)
			}
			seen[at] = true
		}
	}
}
