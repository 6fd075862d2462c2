// internal/stage/session.go
package stage

import (
	"fmt"
	"path"
	"sort"

	"treestage/internal/edit"
	"treestage/internal/objstore"
	"treestage/internal/snapshot"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config identifies where a session commits.
type Config struct {
	Repo string
	// Branch is the target the commit lands on.
	Branch string
	// BaseBranch is the start point used when Branch does not exist
	// remotely yet, and the branch all deferred reads resolve against.
	BaseBranch string
}

// File is one staged file for AddFiles.
type File struct {
	Path    string
	Content []byte
	Mode    snapshot.Mode
}

// Selector picks tracked entries, either by exact path or by an
// arbitrary predicate.
type Selector struct {
	path  string
	match func(path string, entry snapshot.Entry) bool
}

// Path selects exactly one tracked path.
func Path(p string) Selector {
	return Selector{path: p}
}

// Match selects every tracked entry the predicate accepts.
func Match(fn func(path string, entry snapshot.Entry) bool) Selector {
	return Selector{match: fn}
}

func (s Selector) matches(p string, entry snapshot.Entry) bool {
	if s.match != nil {
		return s.match(p, entry)
	}
	return s.path == p
}

// Transform rewrites a file's content and mode. Returning a different
// mode stages a mode change alongside the content change.
type Transform func(content []byte, mode snapshot.Mode) ([]byte, snapshot.Mode, error)

// applyEnv is what a staged group sees when it is realized at commit
// time: the resolved base tree for selector resolution, and the store
// (real or simulated) operators persist through.
type applyEnv struct {
	base   snapshot.Map
	store  objstore.Store
	logger *zap.Logger
}

// groupBuilder realizes one staged group into its operators. Builders
// run only inside Commit, in push order.
type groupBuilder func(env *applyEnv) ([]edit.Operator, error)

// Session accumulates ordered groups of edits and materializes them as
// one commit. It is a single-use linear builder: one goroutine, one
// Commit call, no reset.
type Session struct {
	store     objstore.Store
	cfg       Config
	logger    *zap.Logger
	id        string
	groups    []groupBuilder
	dryRun    bool
	committed bool
}

func New(store objstore.Store, cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		store:  store,
		cfg:    cfg,
		logger: logger.With(zap.String("session_id", id), zap.String("branch", cfg.Branch)),
		id:     id,
	}
}

// DryRun toggles simulation: remote reads still happen, writes are
// replaced by local hash computation and no branch or commit is created.
func (s *Session) DryRun(enabled bool) *Session {
	s.dryRun = enabled
	return s
}

// AddFile stages one file addition. Mode defaults to a regular file.
func (s *Session) AddFile(filePath string, content []byte, mode ...snapshot.Mode) *Session {
	m := snapshot.ModeFile
	if len(mode) > 0 {
		m = mode[0]
	}
	s.groups = append(s.groups, func(env *applyEnv) ([]edit.Operator, error) {
		return []edit.Operator{edit.Add(env.store, filePath, content, m)}, nil
	})
	return s
}

// AddFiles stages one group adding every given file, optionally joined
// under basePath.
func (s *Session) AddFiles(files []File, basePath string) *Session {
	staged := make([]File, len(files))
	copy(staged, files)
	s.groups = append(s.groups, func(env *applyEnv) ([]edit.Operator, error) {
		ops := make([]edit.Operator, 0, len(staged))
		for _, f := range staged {
			target := f.Path
			if basePath != "" {
				target = path.Join(basePath, f.Path)
			}
			mode := f.Mode
			if mode == "" {
				mode = snapshot.ModeFile
			}
			ops = append(ops, edit.Add(env.store, target, f.Content, mode))
		}
		return ops, nil
	})
	return s
}

// ModifyFile stages a deferred modification of the first entry the
// selector matches on the base branch. Zero matches is a warning, not
// an error.
func (s *Session) ModifyFile(selector Selector, transform Transform) *Session {
	return s.stageModify(selector, transform, true)
}

// ModifyFiles stages a deferred modification of every entry the
// selector matches on the base branch.
func (s *Session) ModifyFiles(selector Selector, transform Transform) *Session {
	return s.stageModify(selector, transform, false)
}

func (s *Session) stageModify(selector Selector, transform Transform, single bool) *Session {
	s.groups = append(s.groups, func(env *applyEnv) ([]edit.Operator, error) {
		matched := resolve(env.base, selector)
		if len(matched) == 0 {
			env.logger.Warn("selector matched no files, skipping edit")
			return nil, nil
		}
		if single {
			matched = matched[:1]
		}

		ops := make([]edit.Operator, 0, len(matched))
		for _, entry := range matched {
			content, err := env.store.GetBlob(entry.Hash)
			if err != nil {
				return nil, fmt.Errorf("fetching %s: %w", entry.Path, err)
			}
			newContent, newMode, err := transform(content, entry.Mode)
			if err != nil {
				return nil, fmt.Errorf("transforming %s: %w", entry.Path, err)
			}
			ops = append(ops, edit.Modify(env.store, entry.Path, content, newContent, newMode))
		}
		return ops, nil
	})
	return s
}

// DeleteFile stages removal of a path together with everything beneath
// it. Deleting an absent path is a no-op at apply time.
func (s *Session) DeleteFile(filePath string) *Session {
	s.groups = append(s.groups, func(env *applyEnv) ([]edit.Operator, error) {
		return []edit.Operator{edit.Join(edit.Delete(filePath), edit.DeleteTree(filePath))}, nil
	})
	return s
}

// MoveFile stages a rename of a path together with everything beneath
// it. The gate is the in-progress snapshot, so a move correctly no-ops
// when an earlier staged operation already removed the source.
func (s *Session) MoveFile(from, to string) *Session {
	s.groups = append(s.groups, func(env *applyEnv) ([]edit.Operator, error) {
		return []edit.Operator{edit.Join(edit.Move(from, to), edit.MoveTree(from, to))}, nil
	})
	return s
}

// resolve returns base entries matched by the selector, ordered by path
// so multi-match edits apply deterministically.
func resolve(base snapshot.Map, selector Selector) []snapshot.Entry {
	var matched []snapshot.Entry
	for p, entry := range base {
		if selector.matches(p, entry) {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Path < matched[j].Path })
	return matched
}
