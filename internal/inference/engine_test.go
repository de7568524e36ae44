package inference

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hiddenrank/internal/relations"
	"github.com/lox/hiddenrank/internal/showdown"
	"github.com/lox/hiddenrank/poker"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestNewEngineStartsUninformed(t *testing.T) {
	t.Parallel()
	e := New(WithSeed(1), WithLogger(quietLogger()), WithClock(quartz.NewMock(t)))

	assert.Equal(t, uint64(6227020800), e.Uncertainty())
	assert.Empty(t, e.CurrentRelations())
	require.NoError(t, e.CurrentOrdering().Validate())

	r := e.Report()
	assert.Equal(t, 1, r.Passes)
	assert.Zero(t, r.LastPass, "mock clock does not advance")
}

func TestSubmitEvidence(t *testing.T) {
	t.Parallel()
	e := New(WithSeed(2), WithLogger(quietLogger()))

	assert.True(t, e.SubmitEvidence("pair-pair", poker.Two, poker.Ace, 0.9))
	assert.False(t, e.SubmitEvidence("pair-pair", poker.Two, poker.Two, 0.9))
	assert.False(t, e.SubmitEvidence("pair-pair", poker.Two, poker.Ace, 2), "invalid certainty is reported as rejected")

	assert.InDelta(t, 0.9, e.Probability(poker.Two, poker.Ace), 1e-9)
	assert.Less(t, e.Uncertainty(), uint64(6227020800))
}

func TestOrderingConvergesOnConsistentEvidence(t *testing.T) {
	t.Parallel()
	hidden := poker.MustParseOrdering("3A2456789TJQK")
	e := New(WithSeed(3), WithLogger(quietLogger()))

	for i := 0; i+1 < len(hidden); i++ {
		for rep := 0; rep < 3; rep++ {
			e.SubmitEvidence("oracle", hidden[i], hidden[i+1], 0.95)
		}
	}

	o := e.CurrentOrdering()
	assert.Greater(t, o.Agreement(hidden), 0.9, "ordering %s", o)
	assert.Less(t, e.Uncertainty(), uint64(1000))
	// Unanimous evidence on every adjacent pair pins the ordering down.
	assert.Equal(t, hidden, o)
	assert.Equal(t, uint64(1), e.Uncertainty())
}

func TestRefreshIsLazy(t *testing.T) {
	t.Parallel()
	e := New(WithSeed(4), WithLogger(quietLogger()))
	e.SubmitEvidence("r", poker.Two, poker.Three, 0.8)

	first := e.CurrentOrdering()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.CurrentOrdering(), "no new evidence, no new ordering")
	}
	assert.Equal(t, 1, e.Report().Passes)

	e.SubmitEvidence("r", poker.Four, poker.Five, 0.8)
	e.CurrentRelations()
	assert.Equal(t, 2, e.Report().Passes)
}

func TestEvaluateDelegates(t *testing.T) {
	t.Parallel()
	e := New(WithSeed(5), WithLogger(quietLogger()))
	o := poker.CanonicalOrdering()

	royal := e.Evaluate(o, poker.MustParseCards("Tc,Jc,Qc,Kc,Ac"))
	assert.Equal(t, showdown.RoyalFlush, royal.Category)

	flush := e.EvaluateIgnoringStraights(o, poker.MustParseCards("Tc,Jc,Qc,Kc,Ac"))
	assert.Equal(t, showdown.Flush, flush.Category)
	assert.Equal(t, 1, e.Compare(o, royal, flush))
}

func TestSnapshotAndDiagnostics(t *testing.T) {
	t.Parallel()
	e := New(WithSeed(6), WithLogger(quietLogger()))
	e.SubmitEvidence("pair-pair", poker.Two, poker.Ace, 0.9)

	lines := e.Snapshot()
	require.Len(t, lines, poker.NumRanks)
	decoded, err := relations.Decode(lines)
	require.NoError(t, err)
	assert.ElementsMatch(t, e.CurrentRelations(), decoded)

	text := e.Diagnostics()
	assert.Contains(t, text, "ordering: ")
	assert.Contains(t, text, "uncertainty: ")
	assert.Contains(t, text, "denied: none")
	assert.Contains(t, text, "pair-pair×1")
}

func TestPassOverBudgetIsLogged(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	e := New(WithSeed(7), WithLogger(logger), WithBudget(time.Nanosecond))

	e.SubmitEvidence("r", poker.Two, poker.Three, 0.5)
	e.CurrentOrdering()
	assert.Contains(t, buf.String(), "over budget")
}

func TestConcurrentUse(t *testing.T) {
	t.Parallel()
	e := New(WithSeed(8), WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				a := poker.Rank((w + i) % poker.NumRanks)
				b := poker.Rank((w + i + 1) % poker.NumRanks)
				e.SubmitEvidence("worker", a, b, 0.3)
				_ = e.CurrentOrdering()
				_ = e.Uncertainty()
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, e.CurrentOrdering().Validate())
	assert.Empty(t, relations.DetectCycles(e.CurrentRelations()))
}

func TestLikelyOrdering(t *testing.T) {
	t.Parallel()
	e := New(WithSeed(5), WithLogger(quietLogger()))

	_, ok := e.LikelyOrdering(poker.Two, poker.Ace)
	assert.False(t, ok)

	e.SubmitEvidence("pair-pair", poker.Two, poker.Ace, 0.9)
	edge, ok := e.LikelyOrdering(poker.Two, poker.Ace)
	require.True(t, ok)
	assert.Equal(t, relations.E(poker.Two, poker.Ace), edge)

	edge, ok = e.LikelyOrdering(poker.Ace, poker.Two)
	require.True(t, ok)
	assert.Equal(t, relations.E(poker.Two, poker.Ace), edge)
}
