package objstore

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"treestage/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("CreateBlob", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/repos/acme/widgets/git/blobs", r.URL.Path)
			assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

			var payload struct {
				Content  string `json:"content"`
				Encoding string `json:"encoding"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			decoded, err := base64.StdEncoding.DecodeString(payload.Content)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), decoded)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"sha": "abc123"})
		}))
		defer server.Close()

		client := NewClient(server.URL, "acme/widgets", "sekrit")
		hash, err := client.CreateBlob([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, "abc123", hash)
	})

	t.Run("GetBlob", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/acme/widgets/git/blobs/abc123", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString([]byte("payload")),
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "acme/widgets", "")
		content, err := client.GetBlob("abc123")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), content)
	})

	t.Run("GetBranchNotFoundIsNil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "acme/widgets", "")
		ref, err := client.GetBranch("ghost")
		require.NoError(t, err, "a missing ref is an expected outcome, not an error")
		assert.Nil(t, ref)
	})

	t.Run("GetLatestCommitNotFoundIsNil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "acme/widgets", "")
		commit, err := client.GetLatestCommit("ghost")
		require.NoError(t, err)
		assert.Nil(t, commit)
	})

	t.Run("GetTreeRecursive", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/acme/widgets/git/trees/t1", r.URL.Path)
			assert.Equal(t, "1", r.URL.Query().Get("recursive"))
			json.NewEncoder(w).Encode(Tree{
				Entries: []snapshot.Entry{
					{Path: "a.txt", Hash: "h1", Mode: snapshot.ModeFile, Kind: snapshot.KindBlob},
				},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "acme/widgets", "")
		tree, err := client.GetTree("t1", true)
		require.NoError(t, err)
		require.Len(t, tree.Entries, 1)
		assert.Equal(t, "a.txt", tree.Entries[0].Path)
		assert.False(t, tree.Truncated)
	})

	t.Run("CreateCommit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/acme/widgets/commits", r.URL.Path)

			var payload struct {
				Branch   string           `json:"branch"`
				Message  string           `json:"message"`
				Entries  []snapshot.Entry `json:"entries"`
				BaseTree string           `json:"base_tree"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "main", payload.Branch)
			assert.Equal(t, "msg", payload.Message)
			assert.Equal(t, "t0", payload.BaseTree)
			require.Len(t, payload.Entries, 1)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Ref{Name: "main", CommitHash: "c1"})
		}))
		defer server.Close()

		client := NewClient(server.URL, "acme/widgets", "")
		entries := []snapshot.Entry{{Path: "a.txt", Hash: "h1", Mode: snapshot.ModeFile, Kind: snapshot.KindBlob}}
		ref, err := client.CreateCommit("main", "msg", entries, "t0")
		require.NoError(t, err)
		assert.Equal(t, "c1", ref.CommitHash)
	})

	t.Run("ServerErrorPropagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, "acme/widgets", "")
		_, err := client.GetTree("t1", true)
		assert.Error(t, err)
	})
}
