// internal/diff/diff.go
package diff

import (
	"bytes"
	"fmt"
)

// LineType indicates whether a line was added, removed, or is context.
type LineType int

const (
	Context LineType = iota
	Addition
	Deletion
)

// Line is a single line in a diff.
type Line struct {
	Type    LineType
	Content string
}

// Hunk is a continuous section of changes with surrounding context.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Result contains the complete diff information.
type Result struct {
	Hunks []Hunk
	Stats struct {
		Additions int
		Deletions int
	}
}

// Engine produces line-based two-way diffs.
type Engine struct {
	contextLines int
}

// NewEngine creates a diff engine emitting the given number of context
// lines around each change.
func NewEngine(contextLines int) *Engine {
	return &Engine{contextLines: contextLines}
}

// Diff generates a hunk-based diff between two byte contents.
func (e *Engine) Diff(oldContent, newContent []byte) *Result {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	script := backtrack(oldLines, newLines, computeLCS(oldLines, newLines))

	result := &Result{Hunks: e.groupHunks(script)}
	for _, line := range script {
		switch line.Type {
		case Addition:
			result.Stats.Additions++
		case Deletion:
			result.Stats.Deletions++
		}
	}
	return result
}

func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	return bytes.Split(bytes.TrimSuffix(content, []byte{'\n'}), []byte{'\n'})
}

// computeLCS fills the longest-common-subsequence length matrix.
func computeLCS(oldLines, newLines [][]byte) [][]int {
	matrix := make([][]int, len(oldLines)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(newLines)+1)
	}
	for i := 1; i <= len(oldLines); i++ {
		for j := 1; j <= len(newLines); j++ {
			if bytes.Equal(oldLines[i-1], newLines[j-1]) {
				matrix[i][j] = matrix[i-1][j-1] + 1
			} else {
				matrix[i][j] = max(matrix[i-1][j], matrix[i][j-1])
			}
		}
	}
	return matrix
}

// backtrack walks the matrix from the end, producing the full edit
// script in file order (context, additions and deletions interleaved).
func backtrack(oldLines, newLines [][]byte, lcs [][]int) []Line {
	var script []Line
	i, j := len(oldLines), len(newLines)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && bytes.Equal(oldLines[i-1], newLines[j-1]):
			script = append(script, Line{Type: Context, Content: string(oldLines[i-1])})
			i--
			j--
		case j > 0 && (i == 0 || lcs[i][j-1] >= lcs[i-1][j]):
			script = append(script, Line{Type: Addition, Content: string(newLines[j-1])})
			j--
		default:
			script = append(script, Line{Type: Deletion, Content: string(oldLines[i-1])})
			i--
		}
	}
	// Reverse into forward order.
	for a, b := 0, len(script)-1; a < b; a, b = a+1, b-1 {
		script[a], script[b] = script[b], script[a]
	}
	return script
}

// groupHunks splits the edit script into hunks, keeping at most
// contextLines unchanged lines on either side of a change run.
func (e *Engine) groupHunks(script []Line) []Hunk {
	var changed []int
	for idx, line := range script {
		if line.Type != Context {
			changed = append(changed, idx)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var hunks []Hunk
	flush := func(lo, hi int) {
		hunk := Hunk{Lines: script[lo:hi]}
		oldPos, newPos := 0, 0
		for _, line := range script[:lo] {
			switch line.Type {
			case Context:
				oldPos++
				newPos++
			case Addition:
				newPos++
			case Deletion:
				oldPos++
			}
		}
		hunk.OldStart = oldPos + 1
		hunk.NewStart = newPos + 1
		for _, line := range hunk.Lines {
			switch line.Type {
			case Context:
				hunk.OldLines++
				hunk.NewLines++
			case Addition:
				hunk.NewLines++
			case Deletion:
				hunk.OldLines++
			}
		}
		hunks = append(hunks, hunk)
	}

	start := max(0, changed[0]-e.contextLines)
	end := changed[0] + 1
	for _, idx := range changed[1:] {
		// Merge change runs whose context windows touch or overlap.
		if idx-e.contextLines <= end {
			end = idx + 1
			continue
		}
		flush(start, min(len(script), end+e.contextLines))
		start = max(0, idx-e.contextLines)
		end = idx + 1
	}
	flush(start, min(len(script), end+e.contextLines))

	return hunks
}

// Format renders the diff in unified-style hunk blocks.
func (r *Result) Format() string {
	var buf bytes.Buffer
	for _, hunk := range r.Hunks {
		fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldLines,
			hunk.NewStart, hunk.NewLines)
		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				buf.WriteString("+ ")
			case Deletion:
				buf.WriteString("- ")
			case Context:
				buf.WriteString("  ")
			}
			buf.WriteString(line.Content)
			buf.WriteString("\n")
		}
	}
	return buf.String()
}
