package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/hiddenrank/internal/analysis"
)

type AnalyzeCmd struct {
	Path  string `arg:"" help:"Analysis file, or - for stdin"`
	Plain bool   `help:"Print raw results without headings"`
}

func (c *AnalyzeCmd) Run() error {
	var r io.Reader = os.Stdin
	if c.Path != "-" {
		f, err := os.Open(c.Path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if c.Plain {
		return analysis.Run(r, os.Stdout)
	}

	blocks, err := analysis.Parse(r)
	if err != nil {
		return err
	}
	renderAnalysis(os.Stdout, blocks)
	return nil
}

func renderAnalysis(w io.Writer, blocks []analysis.Block) {
	for i, b := range blocks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Block at line %d", b.Line)))
		for _, res := range b.Evaluate() {
			fmt.Fprintln(w, headingStyle.Render(res.Command))
			for _, line := range res.Lines {
				fmt.Fprintln(w, "  "+styleResultLine(line))
			}
		}
	}
}

func styleResultLine(line string) string {
	switch {
	case strings.HasPrefix(line, "Rule violation"), strings.HasPrefix(line, "Invalid command"):
		return badStyle.Render(line)
	case line == "Correctness: 100%":
		return goodStyle.Render(line)
	default:
		return line
	}
}
