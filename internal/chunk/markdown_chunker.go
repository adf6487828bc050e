// Package chunk splits Markdown notes into heading-respecting, overlapped
// segments for indexing.
package chunk

import (
	"regexp"
	"strings"
)

// Default chunk sizing.
const (
	DefaultMaxChars     = 1600
	DefaultOverlapChars = 320
)

var headingPattern = regexp.MustCompile(`^#{1,6}[ \t]`)

// Chunk is a retrievable slice of Markdown with 1-indexed source line
// numbers.
type Chunk struct {
	Text      string
	StartLine int
	EndLine   int
}

// Options configures chunk sizing.
type Options struct {
	MaxChars     int
	OverlapChars int
}

// DefaultOptions returns the default chunk sizing.
func DefaultOptions() Options {
	return Options{MaxChars: DefaultMaxChars, OverlapChars: DefaultOverlapChars}
}

// MarkdownChunker implements the heading-aware chunking algorithm.
type MarkdownChunker struct {
	opts Options
}

// NewMarkdownChunker creates a chunker with the given options. A zero
// MaxChars falls back to the default.
func NewMarkdownChunker(opts Options) *MarkdownChunker {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.OverlapChars <= 0 {
		opts.OverlapChars = DefaultOverlapChars
	}
	return &MarkdownChunker{opts: opts}
}

// Chunk splits text into an ordered sequence of chunks.
// Blank or whitespace-only input yields no chunks.
func (c *MarkdownChunker) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := splitKeepEnds(text)
	sections := splitAtHeadings(lines)

	var out []Chunk
	for _, sec := range sections {
		sectionText := strings.TrimSpace(joinLines(sec.lines))
		if sectionText == "" {
			continue
		}
		if len(sectionText) <= c.opts.MaxChars {
			out = append(out, Chunk{
				Text:      sectionText,
				StartLine: sec.startLine,
				EndLine:   sec.startLine + len(sec.lines) - 1,
			})
			continue
		}
		out = append(out, c.splitBySize(sec.lines, sec.startLine)...)
	}
	return out
}

type section struct {
	startLine int
	lines     []string
}

// splitAtHeadings breaks lines into sections at every ATX heading line,
// except that a heading encountered before any content has accumulated
// does not close an empty prior section — it simply starts the first one.
func splitAtHeadings(lines []string) []section {
	var sections []section
	currentStart := 1
	var current []string

	for i, line := range lines {
		if headingPattern.MatchString(line) && len(current) > 0 {
			sections = append(sections, section{startLine: currentStart, lines: current})
			currentStart = i + 1
			current = []string{line}
		} else {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		sections = append(sections, section{startLine: currentStart, lines: current})
	}
	return sections
}

// splitBySize accumulates whole lines until the next line would exceed
// MaxChars, emits a chunk, then re-seeds the next window with a backward
// walk of whole lines totalling at most OverlapChars.
func (c *MarkdownChunker) splitBySize(lines []string, startLine int) []Chunk {
	var out []Chunk
	var current []string
	currentChars := 0
	chunkStart := startLine

	for i, line := range lines {
		lineLen := len(line)
		if currentChars+lineLen > c.opts.MaxChars && len(current) > 0 {
			if text := strings.TrimSpace(joinLines(current)); text != "" {
				out = append(out, Chunk{
					Text:      text,
					StartLine: chunkStart,
					EndLine:   chunkStart + len(current) - 1,
				})
			}

			var overlapLines []string
			overlapChars := 0
			for j := len(current) - 1; j >= 0; j-- {
				back := current[j]
				if overlapChars+len(back) > c.opts.OverlapChars {
					break
				}
				overlapLines = append([]string{back}, overlapLines...)
				overlapChars += len(back)
			}

			current = append(append([]string{}, overlapLines...), line)
			chunkStart = startLine + i - len(overlapLines)
			currentChars = 0
			for _, ln := range current {
				currentChars += len(ln)
			}
		} else {
			current = append(current, line)
			currentChars += lineLen
		}
	}

	if len(current) > 0 {
		if text := strings.TrimSpace(joinLines(current)); text != "" {
			out = append(out, Chunk{
				Text:      text,
				StartLine: chunkStart,
				EndLine:   chunkStart + len(current) - 1,
			})
		}
	}
	return out
}

// splitKeepEnds splits text into lines, keeping the trailing newline on
// every line but the last, matching Python's str.splitlines(keepends=True)
// so line-length accounting (and therefore overlap math) lines up exactly.
func splitKeepEnds(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
	}
	return b.String()
}
