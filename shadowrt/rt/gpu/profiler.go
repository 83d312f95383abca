package gpu

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler times BeginSample/EndSample scopes on the CPU side and keeps
// per-frame counters (draws, flushes, bias changes).
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	now func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
		now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	for _, n := range p.Order {
		if n == name {
			return
		}
	}
	p.Order = append(p.Order, name)
}

// EndScope adds the elapsed time to the scope; a scope may open several times per frame.
func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] += p.now().Sub(start)
		delete(p.StartTimes, name)
	}
}

// Open reports scopes begun but not yet ended.
func (p *Profiler) Open() []string {
	open := make([]string, 0, len(p.StartTimes))
	for name := range p.StartTimes {
		open = append(open, name)
	}
	sort.Strings(open)
	return open
}

func (p *Profiler) Add(name string, n int) {
	p.Counts[name] += n
}

// Reset clears timings and counters but keeps the scope order for display.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
	for k := range p.Counts {
		delete(p.Counts, k)
	}
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	sb.WriteString("Shadow timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("\nShadow stats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}

	return sb.String()
}
