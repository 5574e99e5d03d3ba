package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/griffinwalsh/hookbill/internal/adapter/driven/github"
	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) (*ghAdapter.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client, server
}

// fileJSON is a helper struct for building GitHub API changed-file responses.
type fileJSON struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Patch     string `json:"patch,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

type userJSON struct {
	Login string `json:"login"`
}

func TestFetchChangedFiles_SinglePage(t *testing.T) {
	files := []fileJSON{
		{
			Filename:  "internal/server/server.go",
			Status:    "modified",
			Patch:     "@@ -1,2 +1,3 @@\n context\n+added\n-removed",
			Additions: 1,
			Deletions: 1,
		},
		{
			Filename: "assets/logo.png",
			Status:   "added",
			// Binary files carry no patch.
			Additions: 0,
			Deletions: 0,
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(files)
	})

	client, _ := newTestClient(t, handler)
	result, err := client.FetchChangedFiles(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "internal/server/server.go", result[0].Path)
	assert.Equal(t, model.FileStatusModified, result[0].Status)
	assert.Equal(t, "@@ -1,2 +1,3 @@\n context\n+added\n-removed", result[0].Patch)
	assert.Equal(t, 1, result[0].Additions)
	assert.Equal(t, 1, result[0].Deletions)

	assert.Equal(t, "assets/logo.png", result[1].Path)
	assert.Equal(t, model.FileStatusAdded, result[1].Status)
	assert.Empty(t, result[1].Patch)
}

func TestFetchChangedFiles_Pagination(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")

		w.Header().Set("Content-Type", "application/json")

		if page == "" || page == "1" {
			// Page 1: include Link header pointing to page 2
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
			json.NewEncoder(w).Encode([]fileJSON{
				{Filename: "a.go", Status: "modified", Patch: "@@ -1 +1 @@\n-x\n+y"},
			})
		} else {
			// Page 2: no Link header (last page)
			json.NewEncoder(w).Encode([]fileJSON{
				{Filename: "b.go", Status: "added", Patch: "@@ -0,0 +1 @@\n+z"},
			})
		}
	})

	client, _ := newTestClient(t, handler)
	result, err := client.FetchChangedFiles(context.Background(), "owner/repo", 7)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "a.go", result[0].Path)
	assert.Equal(t, "b.go", result[1].Path)
}

func TestFetchChangedFiles_EmptyPR(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]fileJSON{})
	})

	client, _ := newTestClient(t, handler)
	result, err := client.FetchChangedFiles(context.Background(), "owner/repo", 1)

	require.NoError(t, err)
	assert.NotNil(t, result, "should return empty slice, not nil")
	assert.Empty(t, result)
}

func TestFetchChangedFiles_InvalidRepoName(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called for invalid repo name")
	})

	client, _ := newTestClient(t, handler)

	tests := []struct {
		name string
		repo string
	}{
		{name: "no slash", repo: "invalid"},
		{name: "empty owner", repo: "/repo"},
		{name: "empty repo", repo: "owner/"},
		{name: "empty string", repo: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.FetchChangedFiles(context.Background(), tc.repo, 1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid repo name")
		})
	}
}

// --- Error taxonomy mapping ---

func TestFetchChangedFiles_RateLimited(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"message": "API rate limit exceeded"})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchChangedFiles(context.Background(), "owner/repo", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRateLimited)
}

func TestFetchChangedFiles_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchChangedFiles(context.Background(), "owner/repo", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFetchChangedFiles_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchChangedFiles(context.Background(), "owner/repo", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransientFetch)
}

// --- FetchFileContent tests ---

func TestFetchFileContent(t *testing.T) {
	source := "package main\n\nfunc main() {}\n"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("ref"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"name":     "main.go",
			"path":     "cmd/app/main.go",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(source)),
		})
	})

	client, _ := newTestClient(t, handler)
	content, err := client.FetchFileContent(context.Background(), "owner/repo", "cmd/app/main.go", "abc123")

	require.NoError(t, err)
	assert.Equal(t, source, content)
}

func TestFetchFileContent_Directory(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"type": "file", "name": "a.go", "path": "pkg/a.go"},
		})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchFileContent(context.Background(), "owner/repo", "pkg", "abc123")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestFetchFileContent_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchFileContent(context.Background(), "owner/repo", "gone.go", "abc123")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// --- AuthenticatedLogin tests ---

func TestAuthenticatedLogin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userJSON{Login: "hookbill-bot"})
	})

	client, _ := newTestClient(t, handler)
	login, err := client.AuthenticatedLogin(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "hookbill-bot", login)
}

func TestAuthenticatedLogin_BadCredentials(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"message": "Bad credentials"})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.AuthenticatedLogin(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAuthentication)
}

// --- Comment listing tests ---

func TestFetchReviewComments(t *testing.T) {
	comments := []map[string]any{
		{
			"id":       int64(2001),
			"body":     "# AI Code Review for `main.go`\n\nLooks fine.",
			"path":     "main.go",
			"position": 2,
			"user":     map[string]any{"login": "hookbill-bot"},
		},
		{
			"id":       int64(2002),
			"body":     "Human comment",
			"path":     "main.go",
			"position": 5,
			"user":     map[string]any{"login": "alice"},
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(comments)
	})

	client, _ := newTestClient(t, handler)
	result, err := client.FetchReviewComments(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "hookbill-bot", result[0].Author)
	assert.Equal(t, "main.go", result[0].Path)
	assert.Equal(t, 2, result[0].Position)
	assert.Contains(t, result[0].Body, "AI Code Review")

	assert.Equal(t, "alice", result[1].Author)
	assert.Equal(t, 5, result[1].Position)
}

func TestFetchIssueComments(t *testing.T) {
	comments := []map[string]any{
		{
			"id":   int64(3001),
			"body": "Great work on this PR!",
			"user": map[string]any{"login": "charlie"},
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(comments)
	})

	client, _ := newTestClient(t, handler)
	result, err := client.FetchIssueComments(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "charlie", result[0].Author)
	assert.Equal(t, "Great work on this PR!", result[0].Body)
}

// --- Write path tests ---

func TestCreateReviewComment(t *testing.T) {
	var got map[string]any

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/owner/repo/pulls/42/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": int64(9001)})
	})

	client, _ := newTestClient(t, handler)
	err := client.CreateReviewComment(context.Background(), "owner/repo", 42, "headsha123", model.ReviewComment{
		Anchor: model.CommentAnchor{Path: "main.go", Position: 2, Line: 2},
		Body:   "Consider handling the error.",
	})

	require.NoError(t, err)
	assert.Equal(t, "Consider handling the error.", got["body"])
	assert.Equal(t, "headsha123", got["commit_id"])
	assert.Equal(t, "main.go", got["path"])
	assert.Equal(t, float64(2), got["position"], "position travels as the diff offset, not the line number")
}

func TestCreateReviewComment_UnprocessablePosition(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Validation Failed",
			"errors": []map[string]any{
				{"resource": "PullRequestReviewComment", "field": "position", "code": "invalid"},
			},
		})
	})

	client, _ := newTestClient(t, handler)
	err := client.CreateReviewComment(context.Background(), "owner/repo", 42, "headsha123", model.ReviewComment{
		Anchor: model.CommentAnchor{Path: "main.go", Position: 999},
		Body:   "anchored nowhere",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnrecoverablePublish)
}

func TestCreateIssueComment(t *testing.T) {
	var got map[string]any

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/owner/repo/issues/42/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": int64(9002)})
	})

	client, _ := newTestClient(t, handler)
	err := client.CreateIssueComment(context.Background(), "owner/repo", 42, "👋 Hello @alice!")

	require.NoError(t, err)
	assert.Equal(t, "👋 Hello @alice!", got["body"])
}
