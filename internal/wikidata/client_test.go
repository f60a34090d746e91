package wikidata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCachesSparql(t *testing.T) {
	f := &fakeWikidata{
		sparql: func(query string) (int, string) {
			return http.StatusOK, sparqlResult(t, map[string]string{"item": entityURI("Q556")})
		},
	}
	c, collector := newFakeClient(t, f)
	ctx := context.Background()

	first, err := c.Sparql(ctx, "SELECT ?item WHERE {}")
	require.NoError(t, err)
	second, err := c.Sparql(ctx, "SELECT ?item WHERE {}")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.sparqlCalls.Load())

	snap := collector.Snapshot()
	require.NotNil(t, snap.WikidataSPARQL)
	assert.Equal(t, int64(1), snap.WikidataSPARQL.Count)
	assert.Equal(t, int64(1), *snap.WikidataSPARQL.CacheHits)
	assert.Equal(t, int64(1), *snap.WikidataSPARQL.CacheMisses)

	// A different query is a different cache entry
	_, err = c.Sparql(ctx, "SELECT ?other WHERE {}")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.sparqlCalls.Load())

	// Purge forgets everything
	c.Purge()
	_, err = c.Sparql(ctx, "SELECT ?item WHERE {}")
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.sparqlCalls.Load())
}

func TestClientDoesNotCacheErrors(t *testing.T) {
	f := &fakeWikidata{}
	f.sparql = func(query string) (int, string) {
		if f.sparqlCalls.Load() == 1 {
			return http.StatusServiceUnavailable, "try again later"
		}
		return http.StatusOK, sparqlResult(t)
	}
	c, _ := newFakeClient(t, f)

	_, err := c.Sparql(context.Background(), "SELECT * WHERE {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
	assert.Contains(t, err.Error(), "try again later")

	rows, err := c.Sparql(context.Background(), "SELECT * WHERE {}")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int32(2), f.sparqlCalls.Load())
}

func TestClientAPIError(t *testing.T) {
	f := &fakeWikidata{
		api: func(r *http.Request) (int, string) {
			return http.StatusOK, `{"error":{"code":"no-such-entity","info":"Could not find an entity"}}`
		},
	}
	c, _ := newFakeClient(t, f)

	_, err := c.GetEntities(context.Background(), []string{"Q0"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-entity")
}

func TestClientUserAgent(t *testing.T) {
	f := &fakeWikidata{
		sparql: func(string) (int, string) { return http.StatusOK, sparqlResult(t) },
	}
	c, _ := newFakeClient(t, f)

	_, err := c.Sparql(context.Background(), "ASK {}")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, f.userAgent.Load())
}

func TestClientContextCanceled(t *testing.T) {
	f := &fakeWikidata{
		sparql: func(string) (int, string) { return http.StatusOK, sparqlResult(t) },
	}
	c, _ := newFakeClient(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Sparql(ctx, "ASK {}")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetEntitiesBatches(t *testing.T) {
	var mu sync.Mutex
	var batchSizes []int
	f := &fakeWikidata{
		api: func(r *http.Request) (int, string) {
			if r.PostForm.Get("action") != "wbgetentities" || r.PostForm.Get("props") != "labels" {
				return http.StatusBadRequest, "unexpected request"
			}
			ids := strings.Split(r.PostForm.Get("ids"), "|")
			mu.Lock()
			batchSizes = append(batchSizes, len(ids))
			mu.Unlock()

			entities := make([]string, 0, len(ids))
			for _, id := range ids {
				entities = append(entities, fmt.Sprintf(`%q:{"id":%q,"labels":{}}`, id, id))
			}
			return http.StatusOK, `{"entities":{` + strings.Join(entities, ",") + `}}`
		},
	}
	c, _ := newFakeClient(t, f)

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("Q%d", i+1)
	}

	entities, err := c.GetEntities(context.Background(), ids, labelParams("labels", "en"))
	require.NoError(t, err)

	assert.Len(t, entities, 120)
	mu.Lock()
	assert.Equal(t, []int{50, 50, 20}, batchSizes)
	mu.Unlock()
	assert.Equal(t, "Q120", entities["Q120"].ID)
}

func TestGetEntitiesEmpty(t *testing.T) {
	f := &fakeWikidata{}
	c, _ := newFakeClient(t, f)

	entities, err := c.GetEntities(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.Zero(t, f.apiCalls.Load())
}

func TestAvailableLanguages(t *testing.T) {
	f := &fakeWikidata{
		api: func(r *http.Request) (int, string) {
			if r.PostForm.Get("meta") != "siteinfo" || r.PostForm.Get("siprop") != "languages" {
				return http.StatusBadRequest, "unexpected request"
			}
			return http.StatusOK, `{"query":{"languages":[{"code":"en","*":"English"},{"code":"de","*":"Deutsch"}]}}`
		},
	}
	c, _ := newFakeClient(t, f)

	langs, err := c.AvailableLanguages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "de"}, langs)
}

func TestBacklinks(t *testing.T) {
	f := &fakeWikidata{
		api: func(r *http.Request) (int, string) {
			if r.PostForm.Get("gbltitle") != "Property:P246" {
				return http.StatusBadRequest, "unexpected request"
			}
			return http.StatusOK, `{"query":{"pages":{"2":{"title":"Q560"},"1":{"title":"Q556"}}}}`
		},
	}
	c, _ := newFakeClient(t, f)

	titles, err := c.Backlinks(context.Background(), "Property:P246")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q556", "Q560"}, titles)
}

func TestEntityLabel(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]LanguageValue
		want   string
		wantOK bool
	}{
		{"single", map[string]LanguageValue{"en": {"en", "hydrogen"}}, "hydrogen", true},
		{"none", nil, "", false},
		{"ambiguous", map[string]LanguageValue{"en": {"en", "a"}, "de": {"de", "b"}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Entity{Labels: tt.labels}.Label()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
