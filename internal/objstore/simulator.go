// internal/objstore/simulator.go
package objstore

import (
	"sync"

	"treestage/internal/objectid"
	"treestage/internal/snapshot"
)

// Simulator is the dry-run implementation of Store. Reads pass through to
// the wrapped store so results reflect real remote state; writes are
// replaced by local hash computation and synthetic refs. Selecting this
// implementation once at session construction keeps dry-run branching out
// of the operator bodies entirely.
type Simulator struct {
	remote Store

	mu     sync.Mutex
	writes int
}

func NewSimulator(remote Store) *Simulator {
	return &Simulator{remote: remote}
}

// Writes reports how many write calls were absorbed, for callers that
// want to report what a real run would have done.
func (s *Simulator) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Simulator) recordWrite() {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

// CreateBlob computes the identity the remote would assign, without
// persisting anything.
func (s *Simulator) CreateBlob(content []byte) (string, error) {
	s.recordWrite()
	return objectid.BlobHash(content), nil
}

func (s *Simulator) GetBlob(hash string) ([]byte, error) {
	return s.remote.GetBlob(hash)
}

func (s *Simulator) GetBranch(name string) (*Ref, error) {
	return s.remote.GetBranch(name)
}

func (s *Simulator) CreateBranch(name, from string) (*Ref, error) {
	s.recordWrite()
	return &Ref{Name: name}, nil
}

func (s *Simulator) GetLatestCommit(branch string) (*Commit, error) {
	return s.remote.GetLatestCommit(branch)
}

func (s *Simulator) GetTree(treeHash string, recursive bool) (*Tree, error) {
	return s.remote.GetTree(treeHash, recursive)
}

func (s *Simulator) CreateCommit(branch, message string, entries []snapshot.Entry, baseTreeHash string) (*Ref, error) {
	s.recordWrite()
	return &Ref{Name: branch}, nil
}
