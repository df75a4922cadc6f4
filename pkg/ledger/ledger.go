// Package ledger accumulates per-provider rolling statistics used by the
// orchestrator for observability and by operators for diagnostics. Metrics
// never feed back into routing decisions.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
)

// Record holds running totals for one provider.
type Record struct {
	Total             int64
	Successes         int64
	CumulativeLatency time.Duration
	LastUsed          time.Time
}

// SuccessRate returns successes/total, or 0 when no requests recorded.
func (r Record) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Total)
}

// AvgLatency returns cumulative/total, or 0 when no requests recorded.
func (r Record) AvgLatency() time.Duration {
	if r.Total == 0 {
		return 0
	}
	return r.CumulativeLatency / time.Duration(r.Total)
}

// Ledger is an append-only store of provider performance records. Provider
// cardinality is small and bounded, so there is no eviction.
type Ledger struct {
	mu      sync.Mutex
	records map[string]*Record
	log     *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the ledger's logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		records: make(map[string]*Record),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends one call outcome into the provider's running totals.
// Safe for concurrent use.
func (l *Ledger) Record(provider string, latency time.Duration, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[provider]
	if !ok {
		rec = &Record{}
		l.records[provider] = rec
	}
	rec.Total++
	if success {
		rec.Successes++
	}
	rec.CumulativeLatency += latency
	rec.LastUsed = time.Now()

	l.log.Debug("ledger updated",
		zap.String("provider", provider),
		zap.Duration("latency", latency),
		zap.Bool("success", success),
	)
}

// Snapshot returns a copy of all records keyed by provider name.
func (l *Ledger) Snapshot() map[string]Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]Record, len(l.records))
	for name, rec := range l.records {
		out[name] = *rec
	}
	return out
}

// Reset discards all accumulated records.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]*Record)
}

// Report renders a human-readable dump, sorted by provider name for
// determinism.
func (l *Ledger) Report() string {
	snapshot := l.Snapshot()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tREQUESTS\tSUCCESS RATE\tAVG LATENCY\tLAST USED")
	for _, name := range names {
		rec := snapshot[name]
		lastUsed := "never"
		if !rec.LastUsed.IsZero() {
			lastUsed = rec.LastUsed.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%s\t%s\n",
			name, rec.Total, rec.SuccessRate()*100, rec.AvgLatency().Round(time.Millisecond), lastUsed)
	}
	w.Flush()
	return sb.String()
}
