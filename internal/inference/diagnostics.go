package inference

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/hiddenrank/internal/belief"
	"github.com/lox/hiddenrank/internal/relations"
)

// Report is a point-in-time view of the engine for operators.
type Report struct {
	Ordering    string          `json:"ordering"`
	Uncertainty uint64          `json:"uncertainty"`
	Relations   []string        `json:"relations"`
	Denied      []string        `json:"denied"`
	Beliefs     []belief.Belief `json:"beliefs"`
	Evidence    int             `json:"evidence"`
	Passes      int             `json:"passes"`
	Failures    int             `json:"failures"`
	LastPass    time.Duration   `json:"last_pass_ns"`
	LastError   string          `json:"last_error,omitempty"`
}

// Report refreshes the engine if needed and returns its state.
func (e *Engine) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()

	r := Report{
		Ordering:    e.ordering.String(),
		Uncertainty: e.possibilities,
		Relations:   make([]string, 0, len(e.relations)),
		Denied:      e.beliefs.Denied(),
		Beliefs:     e.beliefs.Beliefs(),
		Evidence:    e.beliefs.Evidence(),
		Passes:      e.passes,
		Failures:    e.failures,
		LastPass:    e.lastPass,
	}
	for _, edge := range relations.Simplify(e.relations) {
		r.Relations = append(r.Relations, edge.String())
	}
	if e.lastErr != nil {
		r.LastError = e.lastErr.Error()
	}
	return r
}

// Diagnostics renders Report as text for logs.
func (e *Engine) Diagnostics() string {
	r := e.Report()

	var b strings.Builder
	fmt.Fprintf(&b, "ordering: %s\n", r.Ordering)
	fmt.Fprintf(&b, "uncertainty: %d\n", r.Uncertainty)
	fmt.Fprintf(&b, "evidence: %d\n", r.Evidence)
	fmt.Fprintf(&b, "passes: %d (failures %d, last %s)\n", r.Passes, r.Failures, r.LastPass)
	if r.LastError != "" {
		fmt.Fprintf(&b, "last error: %s\n", r.LastError)
	}
	if len(r.Denied) > 0 {
		fmt.Fprintf(&b, "denied: %s\n", strings.Join(r.Denied, ", "))
	} else {
		b.WriteString("denied: none\n")
	}
	fmt.Fprintf(&b, "relations (%d):\n", len(r.Relations))
	for _, rel := range r.Relations {
		fmt.Fprintf(&b, "  %s\n", rel)
	}
	fmt.Fprintf(&b, "beliefs (%d):\n", len(r.Beliefs))
	for _, bel := range r.Beliefs {
		rules := make(map[string]int)
		var order []string
		for _, ev := range bel.Evidence {
			if rules[ev.Rule] == 0 {
				order = append(order, ev.Rule)
			}
			rules[ev.Rule]++
		}
		parts := make([]string, len(order))
		for i, rule := range order {
			parts[i] = fmt.Sprintf("%s×%d", rule, rules[rule])
		}
		fmt.Fprintf(&b, "  %s %+.3f reps=%d [%s]\n", bel.Pair, bel.Probability, bel.Reps, strings.Join(parts, " "))
	}
	return b.String()
}
