// internal/edit/record.go
package edit

import "treestage/internal/snapshot"

// Op tags a Record variant.
type Op string

const (
	OpAdd    Op = "add"
	OpModify Op = "modify"
	OpDelete Op = "delete"
	OpMove   Op = "move"
)

// Record is an immutable description of one applied change. Records feed
// human-facing logging and the did-anything-happen decision; they are
// never re-interpreted as instructions.
type Record struct {
	Op       Op     `json:"op"`
	Path     string `json:"path"`
	FromPath string `json:"from_path,omitempty"` // set for moves
	// Content is carried only where later diff rendering needs it.
	OldContent []byte `json:"old_content,omitempty"`
	NewContent []byte `json:"new_content,omitempty"`
}

// ApplyResult is the output of one operator or composition: the next
// snapshot plus the ordered records describing how it differs.
type ApplyResult struct {
	Snapshot snapshot.Map
	Records  []Record
}

// Operator is a pure state transition over a snapshot. Operators never
// mutate their input map; each returns a fresh one.
type Operator func(snapshot.Map) (ApplyResult, error)
