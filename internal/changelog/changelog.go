// internal/changelog/changelog.go
package changelog

import (
	"bytes"
	"fmt"
	"strings"

	"treestage/internal/diff"
	"treestage/internal/edit"
)

// Formatter renders applied edit records as human-readable diff text.
// It is a pure function over the record list; nothing here talks to a
// store or reorders records.
type Formatter struct {
	engine *diff.Engine
}

func New(contextLines int) *Formatter {
	return &Formatter{engine: diff.NewEngine(contextLines)}
}

// Format renders every record in order. Adds show their full new content
// as additions, deletes and moves render header-only blocks, and
// modifies render a hunk diff between old and new content.
func (f *Formatter) Format(records []edit.Record) string {
	var buf bytes.Buffer
	for _, rec := range records {
		switch rec.Op {
		case edit.OpAdd:
			fmt.Fprintf(&buf, "added %s\n", rec.Path)
			for _, line := range splitContent(rec.NewContent) {
				fmt.Fprintf(&buf, "+ %s\n", line)
			}
		case edit.OpModify:
			fmt.Fprintf(&buf, "modified %s\n", rec.Path)
			buf.WriteString(f.engine.Diff(rec.OldContent, rec.NewContent).Format())
		case edit.OpDelete:
			fmt.Fprintf(&buf, "deleted %s\n", rec.Path)
		case edit.OpMove:
			fmt.Fprintf(&buf, "moved %s -> %s\n", rec.FromPath, rec.Path)
		}
	}
	return buf.String()
}

func splitContent(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}
