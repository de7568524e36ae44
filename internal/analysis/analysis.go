// Package analysis evaluates relation snapshots offline.
//
// An analysis file is a sequence of blocks. Each block starts with a command
// line (comma separated, case-insensitive), followed by the 13 snapshot
// lines of a relation set and, for every "check" command, one line holding
// the true ordering to check against. Lines starting with '#' and blank
// lines between blocks are ignored.
package analysis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lox/hiddenrank/internal/relations"
	"github.com/lox/hiddenrank/poker"
)

// Commands understood by Evaluate.
const (
	CmdSimplify      = "simplify"
	CmdCount         = "count"
	CmdPossibilities = "possibilities"
	CmdCheck         = "check"
)

// ErrTruncated is returned when a block is missing lines.
var ErrTruncated = errors.New("truncated block")

// Block is one parsed command block.
type Block struct {
	Line     int // 1-based line of the command line
	Commands []string
	Edges    []relations.Edge
	Checks   []poker.Ordering // one per check command, in order
}

// Result is the output of one command.
type Result struct {
	Command string
	Lines   []string
}

// Parse reads every block from r.
func Parse(r io.Reader) ([]Block, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analysis file: %w", err)
	}

	var blocks []Block
	for i := 0; i < len(lines); {
		line := strings.ToLower(strings.TrimSpace(lines[i]))
		i++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		b := Block{Line: i}
		checks := 0
		for _, cmd := range strings.Split(line, ",") {
			cmd = strings.TrimSpace(cmd)
			b.Commands = append(b.Commands, cmd)
			if cmd == CmdCheck {
				checks++
			}
		}

		if i+poker.NumRanks > len(lines) {
			return nil, fmt.Errorf("%w: block at line %d needs %d snapshot lines, %d remain",
				ErrTruncated, b.Line, poker.NumRanks, len(lines)-i)
		}
		edges, err := relations.Decode(lines[i : i+poker.NumRanks])
		if err != nil {
			return nil, fmt.Errorf("block at line %d: %w", b.Line, err)
		}
		b.Edges = edges
		i += poker.NumRanks

		for range checks {
			if i >= len(lines) {
				return nil, fmt.Errorf("%w: block at line %d is missing an ordering for check", ErrTruncated, b.Line)
			}
			o, err := poker.ParseOrdering(lines[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			b.Checks = append(b.Checks, o)
			i++
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Evaluate runs the block's commands in order.
func (b Block) Evaluate() []Result {
	simplified := relations.Simplify(b.Edges)
	checks := b.Checks

	results := make([]Result, 0, len(b.Commands))
	for _, cmd := range b.Commands {
		r := Result{Command: cmd}
		switch cmd {
		case CmdSimplify:
			r.Lines = relations.Encode(simplified)
		case CmdCount:
			r.Lines = []string{strconv.Itoa(len(b.Edges))}
		case CmdPossibilities:
			r.Lines = []string{possibilities(simplified)}
		case CmdCheck:
			r.Lines = check(b.Edges, simplified, checks[0])
			checks = checks[1:]
		default:
			r.Lines = []string{"Invalid command " + cmd}
		}
		results = append(results, r)
	}
	return results
}

func possibilities(edges []relations.Edge) string {
	n, err := relations.Possibilities(edges)
	if err != nil {
		return "cyclic relation set"
	}
	return strconv.FormatUint(n, 10)
}

func check(edges, simplified []relations.Edge, o poker.Ordering) []string {
	ranks := make([]string, len(o))
	for i, r := range o {
		ranks[i] = r.String()
	}

	lines := []string{
		"Correctness check for " + strings.Join(ranks, " -> "),
		fmt.Sprintf("Rule count: %d (%d)", len(edges), len(simplified)),
	}
	violations := relations.Violations(simplified, o)
	for _, e := range violations {
		lines = append(lines, "Rule violation: "+e.String())
	}

	correctness := 100.0
	if len(simplified) > 0 {
		correctness = 100 * (1 - float64(len(violations))/float64(len(simplified)))
	}
	lines = append(lines,
		"Correctness: "+strconv.FormatFloat(correctness, 'f', -1, 64)+"%",
		possibilities(edges),
	)
	return lines
}

// Run parses r and writes every result to w, one line per output line.
func Run(r io.Reader, w io.Writer) error {
	blocks, err := Parse(r)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		for _, res := range b.Evaluate() {
			for _, line := range res.Lines {
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
