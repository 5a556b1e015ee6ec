// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// writeList writes a bulleted list capped at limit items.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
	sb.WriteString("\n")
}

// PrintJobAnalysis outputs a human-readable summary of the analyzed job.
func (p *Printer) PrintJobAnalysis(analysis *types.JobAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	if analysis.ExperienceLevel != "" {
		fmt.Fprintf(&sb, "Level:    %s\n\n", analysis.ExperienceLevel)
	}
	writeList(&sb, "Must have", analysis.Priorities.MustHave, maxItemsToShow)
	writeList(&sb, "Required skills", analysis.RequiredSkills, maxItemsToShow)
	writeList(&sb, "Preferred skills", analysis.PreferredSkills, 3)
	if len(analysis.Keywords) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(analysis.Keywords[:min(len(analysis.Keywords), 8)], ", "))
	}

	p.printBox("JOB ANALYSIS", strings.TrimRight(sb.String(), "\n"))
}

// PrintMatchAnalysis outputs the match score with strengths and gaps.
func (p *Printer) PrintMatchAnalysis(match *types.MatchAnalysis) {
	if match == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Match score: %d/100\n\n", match.MatchScore)
	writeList(&sb, "Strengths", match.Strengths.Skills, 3)
	writeList(&sb, "Skill gaps", match.Gaps.Skills, 3)
	writeList(&sb, "Experience gaps", match.Gaps.Experience, 3)
	writeList(&sb, "Hints", match.OptimizationHints, 3)

	p.printBox("PROFILE MATCH", strings.TrimRight(sb.String(), "\n"))
}

// PrintOutcomes outputs what happened to each section optimizer.
func (p *Printer) PrintOutcomes(outcomes []pipeline.SectionOutcome) {
	if len(outcomes) == 0 {
		return
	}

	var sb strings.Builder
	for i, o := range outcomes {
		mark := "✓"
		switch o.Status {
		case pipeline.OutcomeFallback:
			mark = "⚠"
		case pipeline.OutcomeSkipped:
			mark = "-"
		}
		fmt.Fprintf(&sb, "%s %-11s %s", mark, o.Section, o.Status)
		if o.RelevanceScore > 0 {
			fmt.Fprintf(&sb, " (relevance %d)", o.RelevanceScore)
		}
		sb.WriteString("\n")
		if len(o.KeywordsAdded) > 0 {
			fmt.Fprintf(&sb, "  + %s\n", strings.Join(o.KeywordsAdded, ", "))
		}
		if o.Error != "" {
			fmt.Fprintf(&sb, "  %s: %s\n", o.Failure, o.Error)
		}
		if i < len(outcomes)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SECTION OPTIMIZERS", strings.TrimRight(sb.String(), "\n"))
}

// PrintProgress writes one pipeline progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", event.State, event.Message)
}
