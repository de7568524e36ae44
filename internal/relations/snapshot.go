package relations

import (
	"fmt"
	"strings"

	"github.com/lox/hiddenrank/poker"
)

// Encode renders edges in the snapshot format: one line per rank in print
// order, "|<rank>|[<predecessors>][<successors>]".
func Encode(edges []Edge) []string {
	lines := make([]string, 0, poker.NumRanks)
	for _, v := range poker.AllRanks() {
		pre, post, _ := Relationships(edges, v)
		var b strings.Builder
		b.WriteByte('|')
		b.WriteString(v.String())
		b.WriteString("|[")
		for _, r := range pre {
			b.WriteString(r.String())
		}
		b.WriteString("][")
		for _, r := range post {
			b.WriteString(r.String())
		}
		b.WriteByte(']')
		lines = append(lines, b.String())
	}
	return lines
}

// Decode parses snapshot lines back into a duplicate-free edge set. Commas
// and spaces inside the brackets are ignored.
func Decode(lines []string) ([]Edge, error) {
	var edges []Edge
	for n, line := range lines {
		parsed, err := decodeLine(strings.TrimSpace(line))
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", n+1, err)
		}
		edges = append(edges, parsed...)
	}
	return RemoveRedundancies(edges), nil
}

func decodeLine(line string) ([]Edge, error) {
	if len(line) < 3 || line[0] != '|' || line[2] != '|' {
		return nil, fmt.Errorf("expected |<rank>| prefix in %q", line)
	}
	v, err := poker.ParseRank(line[1])
	if err != nil {
		return nil, err
	}
	pre, rest, err := decodeList(line[3:])
	if err != nil {
		return nil, err
	}
	post, _, err := decodeList(rest)
	if err != nil {
		return nil, err
	}

	edges := make([]Edge, 0, len(pre)+len(post))
	for _, r := range pre {
		edges = append(edges, E(r, v))
	}
	for _, r := range post {
		edges = append(edges, E(v, r))
	}
	return edges, nil
}

func decodeList(s string) ([]poker.Rank, string, error) {
	s = strings.TrimLeft(s, ", ")
	if !strings.HasPrefix(s, "[") {
		return nil, s, fmt.Errorf("expected '[' in %q", s)
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return nil, s, fmt.Errorf("unterminated list in %q", s)
	}
	var ranks []poker.Rank
	for i := 1; i < end; i++ {
		if s[i] == ',' || s[i] == ' ' {
			continue
		}
		r, err := poker.ParseRank(s[i])
		if err != nil {
			return nil, s, err
		}
		ranks = append(ranks, r)
	}
	return ranks, s[end+1:], nil
}
