package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/mindcanvas/generator"
)

func newTestServer(t *testing.T, status int, body string, seen *Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GeneratePath, r.URL.Path)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}

func TestClient_Children(t *testing.T) {
	var seen Request
	srv := newTestServer(t, http.StatusOK, `{"words": [
		{"chinese": "导数", "english": "Derivative"},
		{"chinese": " 积分 ", "english": "Integral", "detail": "∫f(x)dx", "hasDetail": true}
	]}`, &seen)

	c, err := New(srv.URL + "/")
	require.NoError(t, err)

	got, err := c.Children(context.Background(), "微积分", []string{"数学"})
	require.NoError(t, err)
	assert.Equal(t, []generator.Candidate{
		{Concept: "导数", Translation: "Derivative"},
		{Concept: "积分", Translation: "Integral", Detail: "∫f(x)dx", HasDetail: true},
	}, got)

	assert.Equal(t, "微积分", seen.Word)
	assert.Empty(t, seen.Action)
	assert.Equal(t, []string{"数学"}, seen.ParentPath)
}

func TestClient_ChildrenEmptyIsParseError(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"words": []}`, nil)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Children(context.Background(), "x", nil)
	assert.True(t, generator.IsParseError(err))
}

func TestClient_Detail(t *testing.T) {
	var seen Request
	srv := newTestServer(t, http.StatusOK, `{"hasDetail": true, "detail": "x"}`, &seen)
	c, err := New(srv.URL)
	require.NoError(t, err)

	got, err := c.Detail(context.Background(), "导数", nil)
	require.NoError(t, err)
	assert.Equal(t, generator.DetailResult{HasDetail: true, Detail: "x"}, got)
	assert.Equal(t, ActionDetail, seen.Action)
}

func TestClient_DetailMissingField(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"detail": "x"}`, nil)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Detail(context.Background(), "导数", nil)
	assert.True(t, generator.IsParseError(err))
}

func TestClient_Summarize(t *testing.T) {
	var seen Request
	srv := newTestServer(t, http.StatusOK, `{"summary": "# 总结"}`, &seen)
	c, err := New(srv.URL)
	require.NoError(t, err)

	got, err := c.Summarize(context.Background(), []generator.ConceptRef{{Concept: "导数", Translation: "Derivative"}})
	require.NoError(t, err)
	assert.Equal(t, "# 总结", got)
	assert.Equal(t, ActionSummarize, seen.Action)
	assert.Equal(t, []Word{{Chinese: "导数", English: "Derivative"}}, seen.AllNodes)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, `{"error": "upstream failed"}`, nil)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Children(context.Background(), "x", nil)
	require.Error(t, err)
	assert.True(t, generator.IsCallError(err))
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "upstream failed")
}

func TestClient_MalformedBody(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `not json`, nil)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Summarize(context.Background(), []generator.ConceptRef{{Concept: "a"}})
	assert.True(t, generator.IsParseError(err))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Detail(context.Background(), "x", nil)
	assert.True(t, generator.IsCallError(err))
}
