package scopes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{name: "empty", header: "", want: []string{}},
		{name: "single", header: "repo", want: []string{"repo"}},
		{name: "multiple with spaces", header: "repo, read:org, gist", want: []string{"repo", "read:org", "gist"}},
		{name: "trailing comma", header: "repo,", want: []string{"repo"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseHeader(tc.header))
		})
	}
}

func TestSatisfies(t *testing.T) {
	assert.True(t, Satisfies([]string{"repo"}, "repo"))
	assert.True(t, Satisfies([]string{"repo"}, "public_repo"))
	assert.True(t, Satisfies([]string{"admin:org"}, "read:org"))
	assert.False(t, Satisfies([]string{"gist"}, "repo"))
	assert.False(t, Satisfies(nil, "repo"))
}

func TestCanComment(t *testing.T) {
	assert.True(t, CanComment([]string{"public_repo"}))
	assert.True(t, CanComment([]string{"repo"}))
	assert.False(t, CanComment([]string{"read:org"}))
}

func TestFetcherLookup(t *testing.T) {
	t.Run("parses header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Header().Set(OAuthScopesHeader, "repo, read:org")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		got, err := NewFetcher(srv.Client(), srv.URL).Lookup(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, []string{"repo", "read:org"}, got)
	})

	t.Run("fine-grained token has no header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		got, err := NewFetcher(srv.Client(), srv.URL).Lookup(context.Background(), "tok")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewFetcher(srv.Client(), srv.URL).Lookup(context.Background(), "tok")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or expired")
	})
}
