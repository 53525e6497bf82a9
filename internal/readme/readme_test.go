package readme

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepositoryURL(t *testing.T) {
	tests := []struct {
		raw       string
		owner     string
		name      string
		expectErr bool
	}{
		{raw: "https://github.com/acme/widgets", owner: "acme", name: "widgets"},
		{raw: "https://github.com/acme/widgets/", owner: "acme", name: "widgets"},
		{raw: "https://github.com/acme/widgets.git", owner: "acme", name: "widgets"},
		{raw: "https://github.com/acme/widgets/tree/main/docs", owner: "acme", name: "widgets"},
		{raw: "github.com/acme/widgets", owner: "acme", name: "widgets"},
		{raw: "acme/widgets", owner: "acme", name: "widgets"},
		{raw: "", expectErr: true},
		{raw: "https://github.com/acme", expectErr: true},
		{raw: "https://", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			owner, name, err := ParseRepositoryURL(tt.raw)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestGitHubClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/repos/acme/widgets":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"name":        "widgets",
				"description": "Widget factory",
				"language":    "Go",
			})
		case "/repos/acme/widgets/contents":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"name": "go.mod", "type": "file"},
				{"name": "cmd", "type": "dir"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewGitHubClient(srv.URL, "gh-token", 5*time.Second)

	info, err := client.Repository(context.Background(), "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, RepoInfo{Name: "widgets", Description: "Widget factory", Language: "Go"}, *info)

	files, err := client.Contents(context.Background(), "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, []string{"go.mod", "cmd"}, files)

	_, err = client.Repository(context.Background(), "acme", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestGeminiClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Contents, 1) && assert.Len(t, req.Contents[0].Parts, 1) {
			assert.Equal(t, "write a readme", req.Contents[0].Parts[0].Text)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "# Widgets\n"}, {"text": "A factory."}},
				},
			}},
		})
	}))
	defer srv.Close()

	client, err := NewGeminiClient(srv.URL, "api-key", "", 5*time.Second)
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "write a readme")
	require.NoError(t, err)
	assert.Equal(t, "# Widgets\nA factory.", text)
}

func TestGeminiClient_Failures(t *testing.T) {
	_, err := NewGeminiClient("", "", "", time.Second)
	require.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota"}`))
	}))
	defer srv.Close()

	client, err := NewGeminiClient(srv.URL, "k", "m", time.Second)
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(RepoInfo{Name: "widgets", Description: "Widget factory", Language: "Go"}, []string{"go.mod", "main.go"})

	assert.Contains(t, prompt, "Project Name: widgets")
	assert.Contains(t, prompt, "Description: Widget factory")
	assert.Contains(t, prompt, "Main Language: Go")
	assert.Contains(t, prompt, "File List: go.mod, main.go")
	assert.Contains(t, prompt, "- Installation guide")
	assert.Equal(t, "widgets-README.md", Title("widgets"))
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client, err := NewGeminiClient(srv.URL, "k", "m", time.Second)
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
