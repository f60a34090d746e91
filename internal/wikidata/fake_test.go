package wikidata

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/stretchr/testify/require"
)

// fakeWikidata serves canned API and SPARQL responses.
type fakeWikidata struct {
	api    func(r *http.Request) (int, string)
	sparql func(query string) (int, string)

	apiCalls    atomic.Int32
	sparqlCalls atomic.Int32
	userAgent   atomic.Value
}

func (f *fakeWikidata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.userAgent.Store(r.UserAgent())
	w.Header().Set("Content-Type", "application/json")

	var status int
	var body string
	switch r.URL.Path {
	case "/w/api.php":
		f.apiCalls.Add(1)
		if r.Method != http.MethodPost || r.ParseForm() != nil || f.api == nil {
			http.Error(w, "bad api request", http.StatusBadRequest)
			return
		}
		status, body = f.api(r)
	case "/sparql":
		f.sparqlCalls.Add(1)
		if r.Method != http.MethodGet || r.URL.Query().Get("format") != "json" || f.sparql == nil {
			http.Error(w, "bad sparql request", http.StatusBadRequest)
			return
		}
		status, body = f.sparql(r.URL.Query().Get("query"))
	default:
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// newFakeClient starts f and returns a client pointed at it.
func newFakeClient(t *testing.T, f *fakeWikidata) (*Client, *metrics.Collector) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	collector := metrics.NewCollector()
	c := New(Options{
		APIURL:    srv.URL + "/w/api.php",
		SPARQLURL: srv.URL + "/sparql",
	}, collector, metrics.NewRegistry())
	return c, collector
}

// sparqlResult encodes rows as a SPARQL JSON result set.
func sparqlResult(t *testing.T, rows ...map[string]string) string {
	t.Helper()
	bindings := make([]Binding, 0, len(rows))
	for _, row := range rows {
		b := make(Binding, len(row))
		for k, v := range row {
			b[k] = Term{Type: "literal", Value: v}
		}
		bindings = append(bindings, b)
	}
	data, err := json.Marshal(map[string]any{
		"head":    map[string]any{"vars": []string{}},
		"results": map[string]any{"bindings": bindings},
	})
	require.NoError(t, err)
	return string(data)
}

func entityURI(id string) string {
	return EntityPrefix + id
}
