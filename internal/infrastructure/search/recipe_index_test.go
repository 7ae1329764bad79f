package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

type fakeNode struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
	status   int
	exists   bool
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.bodies[key] = body

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
		return
	}

	switch {
	case r.Method == http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/recipes":
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.URL.Path == "/recipes/_search":
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"9","_source":{"id":9,"title":"Tomato Soup","instructions":"simmer","minutes_to_complete":30,"user_id":4}}]}}`))
	default:
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}
}

func newTestIndex(t *testing.T, node *fakeNode) *RecipeIndex {
	t.Helper()
	if node.bodies == nil {
		node.bodies = map[string][]byte{}
	}
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRecipeIndex(es, "recipes", logger)
}

func TestRecipeIndex_Index(t *testing.T) {
	node := &fakeNode{}
	ix := newTestIndex(t, node)
	owner := int64(4)

	require.NoError(t, ix.Index(context.Background(), &entity.Recipe{ID: 9, Title: "Soup", Instructions: "simmer", UserID: &owner}))

	require.Contains(t, node.requests, "PUT /recipes/_doc/9")
	var doc map[string]any
	require.NoError(t, json.Unmarshal(node.bodies["PUT /recipes/_doc/9"], &doc))
	assert.Equal(t, "Soup", doc["title"])
	assert.EqualValues(t, 4, doc["user_id"])
}

func TestRecipeIndex_IndexErrorStatus(t *testing.T) {
	ix := newTestIndex(t, &fakeNode{status: http.StatusBadRequest})
	err := ix.RecipeCreated(context.Background(), &entity.Recipe{ID: 9})
	assert.Error(t, err)
}

func TestRecipeIndex_Search(t *testing.T) {
	node := &fakeNode{}
	ix := newTestIndex(t, node)

	got, err := ix.Search(context.Background(), 4, "soup", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tomato Soup", got[0].Title)
	assert.True(t, got[0].OwnedBy(4))

	var q map[string]any
	require.NoError(t, json.Unmarshal(node.bodies["POST /recipes/_search"], &q))
	filter := q["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	term := filter[0].(map[string]any)["term"].(map[string]any)
	assert.EqualValues(t, 4, term["user_id"])
	assert.EqualValues(t, 10, q["size"])
}

func TestRecipeIndex_EnsureIndex(t *testing.T) {
	node := &fakeNode{}
	ix := newTestIndex(t, node)
	require.NoError(t, ix.EnsureIndex(context.Background()))
	assert.Contains(t, node.requests, "PUT /recipes")

	existing := &fakeNode{exists: true}
	ix = newTestIndex(t, existing)
	require.NoError(t, ix.EnsureIndex(context.Background()))
	assert.NotContains(t, existing.requests, "PUT /recipes")
}
