// internal/objectid/objectid.go
package objectid

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Object kinds understood by the remote store.
const (
	KindBlob   = "blob"
	KindTree   = "tree"
	KindCommit = "commit"
)

// Hash computes the canonical identity of an object: a SHA-1 digest over
// the header "{kind} {length}\0" followed by the raw bytes, hex encoded.
// This is the same scheme the remote store uses, so locally computed
// identities match server-assigned ones bit-for-bit.
func Hash(kind string, data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d", kind, len(data))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BlobHash is Hash for blob content.
func BlobHash(data []byte) string {
	return Hash(KindBlob, data)
}
