package service

import (
	"strings"
	"sync"
	"time"
)

// TimeLayout is the wire format of submission timestamps, with microsecond
// resolution and an optional zone name.
const TimeLayout = "2006-01-02 15:04:05.000000 MST"

const timeLayoutNoZone = "2006-01-02 15:04:05.000000"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTimestamp accepts the wire format with or without a zone name; a
// missing zone leaves a trailing space and is read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(timeLayoutNoZone, strings.TrimRight(value, " "), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Generator produces strictly increasing microsecond timestamps, even when
// called concurrently or faster than the clock resolution: a tie with the
// previous value is perturbed one microsecond forward.
type Generator struct {
	mu   sync.Mutex
	last time.Time
}

func (g *Generator) Next() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(g.last) {
		now = g.last.Add(time.Microsecond)
	}
	g.last = now
	return now
}
