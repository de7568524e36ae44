package bot

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/hiddenrank/internal/fileutil"
	"github.com/lox/hiddenrank/internal/game"
	"github.com/lox/hiddenrank/internal/inference"
	"github.com/lox/hiddenrank/internal/matchid"
)

// Snapshot is the on-disk record of the engine's state during a match.
type Snapshot struct {
	MatchID   string           `json:"match_id"`
	Round     int              `json:"round"`
	Bankroll  int              `json:"bankroll"`
	WrittenAt time.Time        `json:"written_at"`
	Engine    inference.Report `json:"engine"`
}

// SnapshotWriter rewrites one file per match, atomically, every few rounds.
type SnapshotWriter struct {
	dir     string
	every   int
	matchID string
	clock   quartz.Clock
}

// NewSnapshotWriter writes into dir every `every` rounds (and on the last
// round of a match). A nil clock means the real clock.
func NewSnapshotWriter(dir string, every int, clock quartz.Clock) *SnapshotWriter {
	if every < 1 {
		every = 1
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &SnapshotWriter{dir: dir, every: every, matchID: matchid.New(), clock: clock}
}

// MatchID identifies the match the writer belongs to.
func (w *SnapshotWriter) MatchID() string { return w.matchID }

// Path is the snapshot file for this match.
func (w *SnapshotWriter) Path() string {
	return filepath.Join(w.dir, w.matchID+".json")
}

// Due reports whether a snapshot should be written after round.
func (w *SnapshotWriter) Due(round int) bool {
	return round%w.every == 0 || round >= game.NumRounds
}

// Write records the engine state after a finished round.
func (w *SnapshotWriter) Write(gs game.GameState, report inference.Report) error {
	s := Snapshot{
		MatchID:   w.matchID,
		Round:     gs.RoundNum,
		Bankroll:  gs.Bankroll,
		WrittenAt: w.clock.Now().UTC(),
		Engine:    report,
	}
	if err := fileutil.WriteJSONAtomic(w.Path(), s); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot written by SnapshotWriter.
func ReadSnapshot(path string) (Snapshot, error) {
	var s Snapshot
	if err := fileutil.ReadJSON(path, &s); err != nil {
		return Snapshot{}, err
	}
	if err := matchid.Validate(s.MatchID); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return s, nil
}
