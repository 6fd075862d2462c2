// internal/snapshot/snapshot.go
package snapshot

import (
	"maps"
	"sort"
)

// Mode is the storage mode of a tracked entry, using the remote store's
// own wire values. No translation layer exists on purpose.
type Mode string

const (
	ModeFile       Mode = "100644"
	ModeExecutable Mode = "100755"
	ModeDirectory  Mode = "040000"
	ModeSubmodule  Mode = "160000"
	ModeSymlink    Mode = "120000"
)

// Kind is the object kind behind an entry.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)

// Entry is one tracked path in a snapshot. Identity is the content hash;
// two entries with equal hash, mode and kind are interchangeable.
type Entry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Mode Mode   `json:"mode"`
	Kind Kind   `json:"kind"`
}

// Same reports whether two entries carry the same identity, ignoring path.
func (e Entry) Same(other Entry) bool {
	return e.Hash == other.Hash && e.Mode == other.Mode && e.Kind == other.Kind
}

// IsTree reports whether the entry denotes a subtree rather than content.
func (e Entry) IsTree() bool {
	return e.Kind == KindTree
}

// Map is the flat path→entry view of a tree at one point in time. Only
// blob- and commit-kind entries are stored; directory membership is
// implied by path prefixes. Callers must treat a Map as immutable and
// use Clone before inserting or deleting.
type Map map[string]Entry

// FromEntries builds a Map from a recursive tree listing, dropping
// subtree rows (their membership is implied by the paths beneath them).
func FromEntries(entries []Entry) Map {
	m := make(Map, len(entries))
	for _, e := range entries {
		if e.IsTree() {
			continue
		}
		m[e.Path] = e
	}
	return m
}

// Clone returns an independent copy. Operators clone before mutating so
// their input snapshot is never touched.
func (m Map) Clone() Map {
	return maps.Clone(m)
}

// Equal reports structural equality: the same set of path→entry pairs.
// This comparison decides whether a commit is a no-op.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for path, e := range m {
		o, ok := other[path]
		if !ok || !e.Same(o) {
			return false
		}
	}
	return true
}

// Sorted returns the entries ordered by path, the form the wire expects.
func (m Map) Sorted() []Entry {
	entries := make([]Entry, 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}
