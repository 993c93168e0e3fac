package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes what an entry measures.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	// KindRedirect marks a navigation the access gate redirected.
	// Path holds "reason -> target".
	KindRedirect
)

// Entry is a single record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string
	StatusCode int
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer. Writes overwrite the oldest entry
// once full; aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// A non-positive size uses DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record appends an entry to the ring buffer.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Snapshot holds aggregated data computed on read.
type Snapshot struct {
	TotalRecorded  int64      `json:"totalRecorded"`
	RequestP50Ms   float64    `json:"requestP50Ms"`
	RequestP95Ms   float64    `json:"requestP95Ms"`
	RequestP99Ms   float64    `json:"requestP99Ms"`
	SlowestPaths   []PathStat `json:"slowestPaths"`
	SlowestQueries []PathStat `json:"slowestQueries"`
	Redirects      []PathStat `json:"redirects"`
}

// PathStat aggregates one path, query label or redirect reason.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"totalMs"`
}

type bucket map[string]*PathStat

func (b bucket) add(e Entry) {
	s, ok := b[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		b[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

// Snapshot aggregates entries recorded at or after since and returns the
// top N of each list. It copies the buffer under the lock and sorts outside it.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	requests, queries, redirects := bucket{}, bucket{}, bucket{}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			durations = append(durations, e.DurationMs)
			requests.add(e)
		case KindQuery:
			queries.add(e)
		case KindRedirect:
			redirects.add(e)
		}
	}

	snap := Snapshot{
		TotalRecorded:  c.TotalRecorded(),
		SlowestPaths:   top(requests, topN, byAvg),
		SlowestQueries: top(queries, topN, byAvg),
		Redirects:      top(redirects, topN, byCount),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func byAvg(a, b PathStat) bool   { return a.AvgMs > b.AvgMs }
func byCount(a, b PathStat) bool { return a.Count > b.Count || (a.Count == b.Count && a.Path < b.Path) }

func top(b bucket, n int, less func(a, b PathStat) bool) []PathStat {
	list := make([]PathStat, 0, len(b))
	for _, s := range b {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool { return less(list[i], list[j]) })
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
