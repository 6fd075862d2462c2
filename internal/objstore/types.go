package objstore

import (
	"treestage/internal/snapshot"
)

// Ref is a branch reference pointing at a commit.
type Ref struct {
	Name       string `json:"name"`
	CommitHash string `json:"commit_hash"`
}

// Commit is the tip of a branch as the remote reports it.
type Commit struct {
	Hash     string `json:"sha"`
	TreeHash string `json:"tree_sha"`
}

// Tree is a recursive listing of a tree object. Truncated means the
// remote could not deliver every entry; callers must treat that as fatal.
type Tree struct {
	Entries   []snapshot.Entry `json:"entries"`
	Truncated bool             `json:"truncated"`
}

// BlobWriter persists content and returns its canonical identity.
type BlobWriter interface {
	CreateBlob(content []byte) (string, error)
}

// BlobReader fetches content by identity.
type BlobReader interface {
	GetBlob(hash string) ([]byte, error)
}

// Store is the remote tree/object store the commit engine runs against.
// GetBranch and GetLatestCommit return (nil, nil) when the ref does not
// exist; absence is an expected outcome, not an error.
type Store interface {
	BlobWriter
	BlobReader
	GetBranch(name string) (*Ref, error)
	CreateBranch(name, from string) (*Ref, error)
	GetLatestCommit(branch string) (*Commit, error)
	GetTree(treeHash string, recursive bool) (*Tree, error)
	CreateCommit(branch, message string, entries []snapshot.Entry, baseTreeHash string) (*Ref, error)
}
