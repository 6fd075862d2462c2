// internal/stage/commit.go
package stage

import (
	"fmt"

	"treestage/internal/edit"
	errs "treestage/internal/errors"
	"treestage/internal/objstore"
	"treestage/internal/snapshot"

	"go.uber.org/zap"
)

// Outcome reports what a Commit call did. Ref is nil exactly when the
// final snapshot equaled the base one (or dry-run was active); callers
// must check it before assuming a commit exists.
type Outcome struct {
	Branch  string
	DryRun  bool
	Records []edit.Record
	Ref     *objstore.Ref
}

// Commit runs the staged groups against the remote base tree and, only
// if the result differs from the base, persists it as one commit on the
// target branch (creating the branch first if needed).
//
// The flow is strictly one-directional: fetch base, apply groups in
// push order, compare, then optionally write. Any remote failure aborts
// the attempt; blobs already created are unreferenced orphans and are
// left alone.
func (s *Session) Commit(message string) (*Outcome, error) {
	if s.committed {
		return nil, fmt.Errorf("session already committed")
	}
	s.committed = true

	store := s.store
	if s.dryRun {
		store = objstore.NewSimulator(s.store)
	}

	// Resolve the read branch once: the target itself if it already
	// exists remotely, otherwise the configured base branch.
	targetRef, err := store.GetBranch(s.cfg.Branch)
	if err != nil {
		return nil, fmt.Errorf("resolving branch %s: %w", s.cfg.Branch, err)
	}
	readBranch := s.cfg.Branch
	if targetRef == nil {
		if s.cfg.BaseBranch == "" {
			return nil, errs.ErrNoStartPoint
		}
		readBranch = s.cfg.BaseBranch
	}

	base, baseTreeHash, err := fetchBase(store, readBranch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("base snapshot fetched",
		zap.String("read_branch", readBranch),
		zap.Int("entries", len(base)))

	env := &applyEnv{base: base, store: store, logger: s.logger}
	current := base
	var records []edit.Record
	for i, build := range s.groups {
		ops, err := build(env)
		if err != nil {
			return nil, fmt.Errorf("staging group %d: %w", i+1, err)
		}
		result, err := edit.Sequence(ops...)(current)
		if err != nil {
			return nil, fmt.Errorf("applying group %d: %w", i+1, err)
		}
		current = result.Snapshot
		records = append(records, result.Records...)
	}

	outcome := &Outcome{Branch: s.cfg.Branch, DryRun: s.dryRun, Records: records}

	if current.Equal(base) {
		s.logger.Info("nothing to commit, staged edits reproduce the base tree")
		return outcome, nil
	}
	if s.dryRun {
		s.logger.Info("dry run, skipping commit",
			zap.Int("records", len(records)))
		return outcome, nil
	}

	if targetRef == nil {
		if _, err := store.CreateBranch(s.cfg.Branch, s.cfg.BaseBranch); err != nil {
			return nil, fmt.Errorf("creating branch %s: %w", s.cfg.Branch, err)
		}
	}

	ref, err := store.CreateCommit(s.cfg.Branch, message, current.Sorted(), baseTreeHash)
	if err != nil {
		return nil, fmt.Errorf("committing to %s: %w", s.cfg.Branch, err)
	}

	s.logger.Info("commit created",
		zap.String("commit", ref.CommitHash),
		zap.Int("records", len(records)))
	outcome.Ref = ref
	return outcome, nil
}

// fetchBase loads the flat snapshot of the branch tip. A branch with no
// commit yet yields an empty snapshot. A truncated tree listing is a
// fatal precondition failure: a partial base cannot yield a safe diff.
func fetchBase(store objstore.Store, branch string) (snapshot.Map, string, error) {
	commit, err := store.GetLatestCommit(branch)
	if err != nil {
		return nil, "", fmt.Errorf("fetching latest commit of %s: %w", branch, err)
	}
	if commit == nil {
		return snapshot.Map{}, "", nil
	}

	tree, err := store.GetTree(commit.TreeHash, true)
	if err != nil {
		return nil, "", fmt.Errorf("fetching tree of %s: %w", branch, err)
	}
	if tree.Truncated {
		return nil, "", errs.ErrTreeTruncated
	}
	return snapshot.FromEntries(tree.Entries), commit.TreeHash, nil
}
