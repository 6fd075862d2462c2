// internal/objstore/client.go
package objstore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	errs "treestage/internal/errors"
	"treestage/internal/snapshot"
)

// Client talks to the remote store over HTTP. All methods are blocking;
// the embedded http.Client carries the timeout.
type Client struct {
	baseURL    string
	repo       string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, repo, token string) *Client {
	return &Client{
		baseURL: baseURL,
		repo:    repo,
		token:   token,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

func (c *Client) do(method, path string, body, out any) (*http.Response, error) {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Transport("executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp, nil
}

func (c *Client) CreateBlob(content []byte) (string, error) {
	var result struct {
		Hash string `json:"sha"`
	}
	payload := map[string]string{
		"content":  base64.StdEncoding.EncodeToString(content),
		"encoding": "base64",
	}
	resp, err := c.do(http.MethodPost, fmt.Sprintf("/repos/%s/git/blobs", c.repo), payload, &result)
	if err != nil {
		return "", fmt.Errorf("creating blob: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("creating blob: repository not found: %s", c.repo)
	}
	return result.Hash, nil
}

func (c *Client) GetBlob(hash string) ([]byte, error) {
	var result struct {
		Content string `json:"content"`
	}
	resp, err := c.do(http.MethodGet, fmt.Sprintf("/repos/%s/git/blobs/%s", c.repo, hash), nil, &result)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s: %w", hash, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("blob not found: %s", hash)
	}
	content, err := base64.StdEncoding.DecodeString(result.Content)
	if err != nil {
		return nil, fmt.Errorf("decoding blob %s: %w", hash, err)
	}
	return content, nil
}

func (c *Client) GetBranch(name string) (*Ref, error) {
	var result Ref
	resp, err := c.do(http.MethodGet, fmt.Sprintf("/repos/%s/branches/%s", c.repo, url.PathEscape(name)), nil, &result)
	if err != nil {
		return nil, fmt.Errorf("fetching branch %s: %w", name, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	return &result, nil
}

func (c *Client) CreateBranch(name, from string) (*Ref, error) {
	var result Ref
	payload := map[string]string{"name": name, "from": from}
	resp, err := c.do(http.MethodPost, fmt.Sprintf("/repos/%s/branches", c.repo), payload, &result)
	if err != nil {
		return nil, fmt.Errorf("creating branch %s: %w", name, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("creating branch %s: start point not found: %s", name, from)
	}
	return &result, nil
}

func (c *Client) GetLatestCommit(branch string) (*Commit, error) {
	var result Commit
	resp, err := c.do(http.MethodGet, fmt.Sprintf("/repos/%s/commits/%s/latest", c.repo, url.PathEscape(branch)), nil, &result)
	if err != nil {
		return nil, fmt.Errorf("fetching latest commit of %s: %w", branch, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	return &result, nil
}

func (c *Client) GetTree(treeHash string, recursive bool) (*Tree, error) {
	path := fmt.Sprintf("/repos/%s/git/trees/%s", c.repo, treeHash)
	if recursive {
		path += "?recursive=1"
	}
	var result Tree
	resp, err := c.do(http.MethodGet, path, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("fetching tree %s: %w", treeHash, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("tree not found: %s", treeHash)
	}
	return &result, nil
}

func (c *Client) CreateCommit(branch, message string, entries []snapshot.Entry, baseTreeHash string) (*Ref, error) {
	var result Ref
	payload := struct {
		Branch   string           `json:"branch"`
		Message  string           `json:"message"`
		Entries  []snapshot.Entry `json:"entries"`
		BaseTree string           `json:"base_tree,omitempty"`
	}{branch, message, entries, baseTreeHash}

	resp, err := c.do(http.MethodPost, fmt.Sprintf("/repos/%s/commits", c.repo), payload, &result)
	if err != nil {
		return nil, fmt.Errorf("creating commit on %s: %w", branch, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("creating commit: branch not found: %s", branch)
	}
	return &result, nil
}
