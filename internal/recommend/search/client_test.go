package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		BaseURL:      srv.URL,
		Timeout:      2,
	})
	return client, srv
}

func TestSearch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "test-id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "test-secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.Equal(t, "습관", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("display"))
		assert.Equal(t, "sim", r.URL.Query().Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 123,
			"start": 1,
			"display": 2,
			"items": [
				{"title": "<b>습관</b>의 힘", "author": "작가", "publisher": "출판", "pubdate": "20230101", "isbn": "111", "description": "설명", "link": "https://x/1", "image": "https://x/1.jpg"},
				{"title": "두번째", "isbn": "222", "pubdate": "20200101"}
			]
		}`))
	})

	result, err := client.Search(context.Background(), "습관", 5)
	require.NoError(t, err)
	assert.Equal(t, 123, result.Total)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "<b>습관</b>의 힘", result.Items[0].Title)
	assert.Equal(t, "111", result.Items[0].ISBN)
}

func TestSearchDisplayClamped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("display"))
		w.Write([]byte(`{"total":0,"items":[]}`))
	})
	_, err := client.Search(context.Background(), "q", 500)
	require.NoError(t, err)
}

func TestSearchNonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	_, err := client.Search(context.Background(), "q", 5)
	require.Error(t, err)
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"})
	_, err := client.Search(context.Background(), "", 5)
	assert.Error(t, err)
}
