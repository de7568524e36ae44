// Package inference is the single entry point the betting layer uses: it
// evaluates hands, accepts showdown evidence and serves the current best
// guess at the hidden ordering.
package inference

import (
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/hiddenrank/internal/belief"
	"github.com/lox/hiddenrank/internal/randutil"
	"github.com/lox/hiddenrank/internal/relations"
	"github.com/lox/hiddenrank/internal/showdown"
	"github.com/lox/hiddenrank/poker"
)

// DefaultBudget is the pass duration above which a warning is logged.
const DefaultBudget = 25 * time.Millisecond

// Engine wraps a belief engine with a lock and a cache of the last
// successfully derived relations and ordering. All methods are safe for
// concurrent use; each holds the lock for the whole operation.
type Engine struct {
	mu      sync.Mutex
	beliefs *belief.Engine
	rng     *rand.Rand
	clock   quartz.Clock
	logger  *log.Logger
	budget  time.Duration

	dirty         bool
	relations     []relations.Edge
	ordering      poker.Ordering
	possibilities uint64
	lastPass      time.Duration
	lastErr       error
	passes        int
	failures      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSeed makes relation derivation and ordering generation reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = randutil.New(seed) }
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock sets the clock used to time passes.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithBudget sets the pass duration that triggers a warning. Zero disables it.
func WithBudget(d time.Duration) Option {
	return func(e *Engine) { e.budget = d }
}

// New creates an engine with no evidence. Until evidence arrives the
// relation set is empty and the ordering is drawn near the print order.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:    quartz.NewReal(),
		budget:   DefaultBudget,
		dirty:    true,
		ordering: poker.CanonicalOrdering(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if e.rng == nil {
		e.rng = randutil.New(randutil.Seed(0))
	}
	e.logger = e.logger.WithPrefix("inference")
	e.beliefs = belief.New(e.logger)
	e.possibilities, _ = relations.Possibilities(nil)
	return e
}

// Evaluate classifies cards under o. It panics on invalid hands; see
// showdown.Validate.
func (e *Engine) Evaluate(o poker.Ordering, cards []poker.Card) showdown.Hand {
	return showdown.Classify(o, cards)
}

// EvaluateIgnoringStraights classifies cards under o without straights.
func (e *Engine) EvaluateIgnoringStraights(o poker.Ordering, cards []poker.Card) showdown.Hand {
	return showdown.ClassifyIgnoringStraights(o, cards)
}

// Compare orders two classified hands under o.
func (e *Engine) Compare(o poker.Ordering, a, b showdown.Hand) int {
	return showdown.Compare(o, a, b)
}

// SubmitEvidence records that a is weaker than b with the given certainty
// (negative certainty claims the opposite). It reports whether the evidence
// was accepted; rejected evidence is normal and not an error.
func (e *Engine) SubmitEvidence(rule string, a, b poker.Rank, certainty float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	accepted, err := e.beliefs.Update(rule, a, b, certainty)
	if err != nil {
		e.logger.Error("Rejected evidence", "rule", rule, "a", a, "b", b, "certainty", certainty, "error", err)
		return false
	}
	if accepted {
		e.dirty = true
		e.logger.Debug("Accepted evidence", "rule", rule, "weaker", a, "stronger", b, "certainty", certainty)
	}
	return accepted
}

// CurrentRelations returns the cycle-free relation set behind the current
// ordering, rederiving it if evidence arrived since the last pass.
func (e *Engine) CurrentRelations() []relations.Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()
	return append([]relations.Edge(nil), e.relations...)
}

// CurrentOrdering returns the active ordering hypothesis.
func (e *Engine) CurrentOrdering() poker.Ordering {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()
	return e.ordering
}

// Uncertainty returns the number of orderings consistent with the current
// relations. Smaller is more confident; 13! means nothing is known.
func (e *Engine) Uncertainty() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()
	return e.possibilities
}

// Probability exposes the aggregated belief that a is weaker than b.
func (e *Engine) Probability(a, b poker.Rank) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.beliefs.Probability(a, b)
}

// LikelyOrdering returns the favoured direction between a and b, weaker
// rank first. ok is false when nothing is known about the pair.
func (e *Engine) LikelyOrdering(a, b poker.Rank) (relations.Edge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.beliefs.LikelyOrdering(a, b)
}

// Snapshot returns the current relations in the 13-line snapshot format.
func (e *Engine) Snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh()
	return relations.Encode(e.relations)
}

// refresh runs one derivation pass if beliefs changed. A failed pass keeps
// the previous relations and ordering. Callers hold e.mu.
func (e *Engine) refresh() {
	if !e.dirty {
		return
	}
	e.dirty = false
	start := e.clock.Now()
	defer func() {
		e.lastPass = e.clock.Since(start)
		e.passes++
		if e.budget > 0 && e.lastPass > e.budget {
			e.logger.Warn("Inference pass over budget", "elapsed", e.lastPass, "budget", e.budget)
		}
	}()

	rels, err := e.beliefs.Relations(e.rng)
	if err != nil {
		e.fail("derive relations", err)
		return
	}
	count, err := relations.Possibilities(rels)
	if err != nil {
		e.fail("count possibilities", err)
		return
	}
	ordering, err := relations.GenerateOrdering(rels, e.rng)
	if err != nil {
		e.fail("generate ordering", err)
		return
	}

	e.relations = rels
	e.possibilities = count
	e.ordering = ordering
	e.lastErr = nil
	e.logger.Debug("Inference pass", "relations", len(rels), "possibilities", count, "ordering", ordering.String())
}

func (e *Engine) fail(stage string, err error) {
	e.failures++
	e.lastErr = err
	e.logger.Error("Inference pass failed, keeping last good ordering", "stage", stage, "error", err, "ordering", e.ordering.String())
}
