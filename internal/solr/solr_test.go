package solr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/conveyor/internal/document"
)

func newServer(t *testing.T, bodies *[]string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*bodies = append(*bodies, string(b))
		w.WriteHeader(status)
	}))
}

func TestAddPostsDocFields(t *testing.T) {
	var bodies []string
	srv := newServer(t, &bodies, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	doc := document.New("doc-1", "page", &document.Schema{})
	require.NoError(t, c.Add(context.Background(), []*document.Document{doc}))

	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], `name="id"`)
	assert.Contains(t, bodies[0], `>doc-1<`)
}

func TestAddWithNoDocsSkipsRequest(t *testing.T) {
	var bodies []string
	srv := newServer(t, &bodies, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	require.NoError(t, c.Add(context.Background(), nil))
	assert.Empty(t, bodies)
}

func TestCommitPostsCommitElement(t *testing.T) {
	var bodies []string
	srv := newServer(t, &bodies, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	require.NoError(t, c.Commit(context.Background()))
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "<commit>")
}

func TestErrorStatusReturnsError(t *testing.T) {
	var bodies []string
	srv := newServer(t, &bodies, http.StatusInternalServerError)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.Commit(context.Background())
	assert.Error(t, err)
}
