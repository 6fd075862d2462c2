// internal/edit/operators.go
package edit

import (
	"fmt"
	"sort"
	"strings"

	"treestage/internal/objectid"
	"treestage/internal/objstore"
	"treestage/internal/snapshot"
)

// Add stages content at path. If the path already holds an entry with the
// same identity, the operator is a no-op and nothing is persisted.
func Add(store objstore.BlobWriter, path string, content []byte, mode snapshot.Mode) Operator {
	return func(snap snapshot.Map) (ApplyResult, error) {
		hash := objectid.BlobHash(content)
		if existing, ok := snap[path]; ok && existing.Hash == hash && existing.Mode == mode {
			return ApplyResult{Snapshot: snap}, nil
		}

		persisted, err := store.CreateBlob(content)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("persisting %s: %w", path, err)
		}

		next := snap.Clone()
		next[path] = snapshot.Entry{Path: path, Hash: persisted, Mode: mode, Kind: snapshot.KindBlob}
		return ApplyResult{
			Snapshot: next,
			Records:  []Record{{Op: OpAdd, Path: path, NewContent: content}},
		}, nil
	}
}

// Modify replaces the content at path, keeping the old content in the
// record so the change can be rendered as a diff later. Same no-op
// short-circuit as Add.
func Modify(store objstore.BlobWriter, path string, oldContent, newContent []byte, mode snapshot.Mode) Operator {
	return func(snap snapshot.Map) (ApplyResult, error) {
		hash := objectid.BlobHash(newContent)
		if existing, ok := snap[path]; ok && existing.Hash == hash && existing.Mode == mode {
			return ApplyResult{Snapshot: snap}, nil
		}

		persisted, err := store.CreateBlob(newContent)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("persisting %s: %w", path, err)
		}

		next := snap.Clone()
		next[path] = snapshot.Entry{Path: path, Hash: persisted, Mode: mode, Kind: snapshot.KindBlob}
		return ApplyResult{
			Snapshot: next,
			Records:  []Record{{Op: OpModify, Path: path, OldContent: oldContent, NewContent: newContent}},
		}, nil
	}
}

// Delete removes the entry at path. Absent paths are a no-op, not an
// error; the target may have been removed earlier in the same session.
func Delete(path string) Operator {
	return func(snap snapshot.Map) (ApplyResult, error) {
		if _, ok := snap[path]; !ok {
			return ApplyResult{Snapshot: snap}, nil
		}

		next := snap.Clone()
		delete(next, path)
		return ApplyResult{
			Snapshot: next,
			Records:  []Record{{Op: OpDelete, Path: path}},
		}, nil
	}
}

// DeleteTree removes every entry strictly below path, one record per
// child. Combined with Delete via Join it realizes directory deletion.
func DeleteTree(path string) Operator {
	return func(snap snapshot.Map) (ApplyResult, error) {
		children := childPaths(snap, path)
		if len(children) == 0 {
			return ApplyResult{Snapshot: snap}, nil
		}

		next := snap.Clone()
		records := make([]Record, 0, len(children))
		for _, child := range children {
			delete(next, child)
			records = append(records, Record{Op: OpDelete, Path: child})
		}
		return ApplyResult{Snapshot: next, Records: records}, nil
	}
}

// Move re-keys the entry at from to to, preserving identity and mode.
// A missing source is a no-op.
func Move(from, to string) Operator {
	return func(snap snapshot.Map) (ApplyResult, error) {
		entry, ok := snap[from]
		if !ok {
			return ApplyResult{Snapshot: snap}, nil
		}

		next := snap.Clone()
		delete(next, from)
		entry.Path = to
		next[to] = entry
		return ApplyResult{
			Snapshot: next,
			Records:  []Record{{Op: OpMove, Path: to, FromPath: from}},
		}, nil
	}
}

// MoveTree re-keys every entry strictly below from by literal prefix
// substitution, one record per child.
func MoveTree(from, to string) Operator {
	return func(snap snapshot.Map) (ApplyResult, error) {
		children := childPaths(snap, from)
		if len(children) == 0 {
			return ApplyResult{Snapshot: snap}, nil
		}

		next := snap.Clone()
		records := make([]Record, 0, len(children))
		for _, child := range children {
			entry := next[child]
			dest := to + "/" + strings.TrimPrefix(child, from+"/")
			delete(next, child)
			entry.Path = dest
			next[dest] = entry
			records = append(records, Record{Op: OpMove, Path: dest, FromPath: child})
		}
		return ApplyResult{Snapshot: next, Records: records}, nil
	}
}

// childPaths returns the paths strictly below parent, sorted for stable
// record order. Matching requires the separator boundary: "foo" never
// claims "foobar".
func childPaths(snap snapshot.Map, parent string) []string {
	prefix := parent + "/"
	var children []string
	for path := range snap {
		if strings.HasPrefix(path, prefix) {
			children = append(children, path)
		}
	}
	sort.Strings(children)
	return children
}
