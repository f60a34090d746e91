package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/models"
	"github.com/raphaelgruber/wdtable/internal/service"
	"github.com/raphaelgruber/wdtable/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves fixed records and remembers the requested languages.
type fakeSource struct {
	mu       sync.Mutex
	elements []*models.Element
	nuclides []*models.Nuclide
	err      error
	langs    []string
}

func (f *fakeSource) Elements(ctx context.Context, lang string) ([]*models.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.langs = append(f.langs, lang)
	return f.elements, f.err
}

func (f *fakeSource) Nuclides(ctx context.Context, lang string) ([]*models.Nuclide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.langs = append(f.langs, lang)
	return f.nuclides, f.err
}

func (f *fakeSource) lastLang() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.langs) == 0 {
		return ""
	}
	return f.langs[len(f.langs)-1]
}

type fakeLanguages struct {
	codes []string
	err   error
	calls int
}

func (f *fakeLanguages) AvailableLanguages(ctx context.Context) ([]string, error) {
	f.calls++
	return f.codes, f.err
}

type discardSink struct{}

func (discardSink) Save(ctx context.Context, f *snapshot.File) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSource() *fakeSource {
	return &fakeSource{
		elements: []*models.Element{
			{ItemID: "Q556", Number: models.Ptr(1), Symbol: models.Ptr("H"), Label: models.Ptr("hydrogen"), Period: models.Ptr(1), Group: models.Ptr(1)},
			{ItemID: "Q560", Number: models.Ptr(2), Symbol: models.Ptr("He"), Label: models.Ptr("helium"), Period: models.Ptr(1), Group: models.Ptr(18)},
			{ItemID: "Q999", Symbol: models.Ptr("Xx")},
		},
		nuclides: []*models.Nuclide{
			{ItemID: "Q2348", AtomicNumber: models.Ptr(0), NeutronNumber: models.Ptr(1), HalfLife: models.Ptr(611.0)},
			{ItemID: "Q54389", AtomicNumber: models.Ptr(1), NeutronNumber: models.Ptr(2), Label: models.Ptr("tritium")},
			{ItemID: "Q1"},
		},
	}
}

type testEnv struct {
	src      *fakeSource
	handler  http.Handler
	metrics  *metrics.Collector
	registry *metrics.Registry
}

func newTestEnv(t *testing.T, src *fakeSource, jobs bool) *testEnv {
	t.Helper()
	collector := metrics.NewCollector()
	registry := metrics.NewRegistry()
	tables := service.NewTableService(grid.DefaultLayout(), src, src, collector, registry)

	opts := Options{
		Tables:      tables,
		Languages:   &fakeLanguages{codes: []string{"en", "de", "fr"}},
		DefaultLang: "en",
		Metrics:     collector,
		Registry:    registry,
		Logger:      testLogger(),
	}
	if jobs {
		opts.Jobs = service.NewJobManager(src, src, discardSink{})
	}

	srv, err := New(opts)
	require.NoError(t, err)
	return &testEnv{src: src, handler: srv.Handler(), metrics: collector, registry: registry}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresTables(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	rec := env.do(t, http.MethodGet, "/?lang=de", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="de">`)
	assert.Contains(t, body, "<b>He</b>")
	assert.Contains(t, body, "https://www.wikidata.org/wiki/Q556")
	assert.Contains(t, body, "Incomplete elements")
	assert.Equal(t, "de", env.src.lastLang())
}

func TestNuclidesPage(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	rec := env.do(t, http.MethodGet, "/nuclides", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Chart of nuclides")
	assert.Contains(t, body, "tritium")
	assert.Contains(t, body, "hl1e2")
}

func TestLicense(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	rec := env.do(t, http.MethodGet, "/license", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GNU General Public License")
}

func TestAPIDocsWithoutProps(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	for _, target := range []string{"/api", "/api/nuclides", "/api?props="} {
		rec := env.do(t, http.MethodGet, target, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", target)
		assert.Contains(t, rec.Body.String(), "props", target)
	}
	assert.Empty(t, env.src.langs, "docs do not build tables")
}

func TestAPIProps(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"single", "/api?props=elements", []string{"elements"}},
		{"unknown ignored", "/api?props=elements&props=bogus", []string{"elements"}},
		{"comma separated", "/api?props=elements,incomplete", []string{"elements", "incomplete"}},
		{"only unknown", "/api?props=bogus", []string{}},
		{"nuclides", "/api/nuclides?props=nuclides&props=incomplete", []string{"incomplete", "nuclides"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, sampleSource(), false)

			rec := env.do(t, http.MethodGet, tt.target, nil, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			keys := make([]string, 0, len(body))
			for k := range body {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.want, keys)
		})
	}
}

func TestAPIElementsPayload(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	rec := env.do(t, http.MethodGet, "/api?props=elements,incomplete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Elements   []models.Element `json:"elements"`
		Incomplete []models.Element `json:"incomplete"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Elements, 2)
	assert.Equal(t, "H", *body.Elements[0].Symbol)
	assert.Equal(t, "He", *body.Elements[1].Symbol)
	require.Len(t, body.Incomplete, 1)
	assert.Equal(t, "Q999", body.Incomplete[0].ItemID)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", &models.ConflictError{Key: models.KeyNumber, Previous: 1, Rejected: 2}, http.StatusBadGateway},
		{"duplicate key", &models.DuplicateKeyError{Key: "1/2", First: "Q1", Second: "Q2"}, http.StatusBadGateway},
		{"other", errors.New("timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeSource{err: tt.err}, false)

			for _, target := range []string{"/", "/nuclides", "/api?props=elements", "/api/nuclides?props=nuclides"} {
				rec := env.do(t, http.MethodGet, target, nil, nil)
				assert.Equal(t, tt.want, rec.Code, target)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	rec := env.do(t, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)
	env.do(t, http.MethodGet, "/", nil, nil)

	rec := env.do(t, http.MethodGet, "/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.NotNil(t, snap.ElementTable)
	assert.Equal(t, int64(1), snap.ElementTable.Count)
	assert.Nil(t, snap.NuclideTable)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)
	env.do(t, http.MethodGet, "/health", nil, nil)
	env.do(t, http.MethodGet, "/does-not-exist", nil, nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `wdtable_http_requests_total{method="GET",path="GET /health",status="200"} 1`)
	assert.Contains(t, body, `path="unmatched",status="404"`)
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	rec := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = env.do(t, http.MethodGet, "/health", nil, map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestLanguageNegotiation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{"query wins", "/?lang=fr", "de", "fr"},
		{"accept language", "/", "de-AT,de;q=0.9,en;q=0.5", "de"},
		{"ordered by quality", "/", "es;q=0.9,fr;q=0.8", "fr"},
		{"no match", "/", "ja", "en"},
		{"no header", "/", "", "en"},
		{"malformed header", "/", "=;;", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, sampleSource(), false)

			header := map[string]string{}
			if tt.accept != "" {
				header["Accept-Language"] = tt.accept
			}
			rec := env.do(t, http.MethodGet, tt.target, nil, header)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, env.src.lastLang())
		})
	}
}

func TestNegotiatorListerFailure(t *testing.T) {
	lister := &fakeLanguages{err: errors.New("offline")}
	n := NewNegotiator(lister, "en")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de")

	assert.Equal(t, "en", n.Language(req))
	assert.Equal(t, "en", n.Language(req))
	assert.Equal(t, 1, lister.calls, "failures are not retried immediately")
}

func TestNegotiatorCachesLanguages(t *testing.T) {
	lister := &fakeLanguages{codes: []string{"en", "nl", "not a code!"}}
	n := NewNegotiator(lister, "en")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "nl-BE")

	assert.Equal(t, "nl", n.Language(req))
	assert.Equal(t, "nl", n.Language(req))
	assert.Equal(t, 1, lister.calls)
}

func TestNegotiatorWithoutLister(t *testing.T) {
	n := NewNegotiator(nil, "sv")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de")
	assert.Equal(t, "sv", n.Language(req))
}

func graphqlQuery(t *testing.T, env *testEnv, query string) GraphQLResponse {
	t.Helper()
	body, err := json.Marshal(GraphQLRequest{Query: query})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/query", bytes.NewReader(body), map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GraphQLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGraphQLPeriodicTable(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	resp := graphqlQuery(t, env, `{
		periodicTable(lang: "de") {
			periods
			groups
			elements { itemId symbol number group special }
			incomplete { itemId symbol number }
			rows { kind element { symbol } }
			specialSeries { kind index }
		}
	}`)
	require.Empty(t, resp.Errors)
	assert.Equal(t, "de", env.src.lastLang())

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var out struct {
		PeriodicTable struct {
			Periods  int `json:"periods"`
			Groups   int `json:"groups"`
			Elements []struct {
				Symbol  string `json:"symbol"`
				Number  int    `json:"number"`
				Special *int   `json:"special"`
			} `json:"elements"`
			Incomplete []struct {
				ItemID string `json:"itemId"`
				Number *int   `json:"number"`
			} `json:"incomplete"`
			Rows [][]struct {
				Kind    string `json:"kind"`
				Element *struct {
					Symbol string `json:"symbol"`
				} `json:"element"`
			} `json:"rows"`
			SpecialSeries [][]struct {
				Kind  string `json:"kind"`
				Index int    `json:"index"`
			} `json:"specialSeries"`
		} `json:"periodicTable"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	table := out.PeriodicTable
	assert.Equal(t, 9, table.Periods)
	assert.Equal(t, 18, table.Groups)
	require.Len(t, table.Elements, 2)
	assert.Equal(t, "H", table.Elements[0].Symbol)
	assert.Nil(t, table.Elements[0].Special)
	require.Len(t, table.Incomplete, 1)
	assert.Nil(t, table.Incomplete[0].Number)

	require.Len(t, table.Rows, 9)
	assert.Equal(t, "element", table.Rows[0][0].Kind)
	assert.Equal(t, "H", table.Rows[0][0].Element.Symbol)
	assert.Equal(t, "empty", table.Rows[0][1].Kind)
	assert.Nil(t, table.Rows[0][1].Element)

	require.Len(t, table.SpecialSeries, 3)
	assert.Equal(t, "indicator", table.SpecialSeries[0][0].Kind)
	assert.Equal(t, 1, table.SpecialSeries[0][0].Index)
}

func TestGraphQLNuclides(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	resp := graphqlQuery(t, env, `{
		nuclides(atomicNumber: 1) { itemId label neutronNumber }
		nuclideChart { maxAtomicNumber maxNeutronNumber incomplete { itemId } }
	}`)
	require.Empty(t, resp.Errors)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nuclides": [{"itemId": "Q54389", "label": "tritium", "neutronNumber": 2}],
		"nuclideChart": {"maxAtomicNumber": 1, "maxNeutronNumber": 2, "incomplete": [{"itemId": "Q1"}]}
	}`, string(data))
}

func TestGraphQLNegotiatedLanguage(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	body, err := json.Marshal(GraphQLRequest{Query: `{ elements { symbol } }`})
	require.NoError(t, err)
	rec := env.do(t, http.MethodPost, "/query?lang=fr", bytes.NewReader(body), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr", env.src.lastLang())
}

func TestGraphQLErrors(t *testing.T) {
	env := newTestEnv(t, &fakeSource{err: errors.New("upstream down")}, false)

	resp := graphqlQuery(t, env, `{ periodicTable { periods } }`)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "upstream down")

	rec := env.do(t, http.MethodGet, "/query", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(t, http.MethodPost, "/query", strings.NewReader("{"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshJobs(t *testing.T) {
	env := newTestEnv(t, sampleSource(), true)

	rec := env.do(t, http.MethodPost, "/refresh?lang=de", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job service.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "de", job.Lang)
	require.NotEmpty(t, job.ID)

	require.Eventually(t, func() bool {
		rec := env.do(t, http.MethodGet, "/jobs/"+job.ID, nil, nil)
		var got service.Job
		if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &got) != nil {
			return false
		}
		return got.Status == service.JobStatusCompleted && got.Elements == 3 && got.Nuclides == 3
	}, 5*time.Second, 10*time.Millisecond)

	rec = env.do(t, http.MethodGet, "/jobs", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []service.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Len(t, jobs, 1)

	rec = env.do(t, http.MethodGet, "/jobs/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshDisabledWithoutJobs(t *testing.T) {
	env := newTestEnv(t, sampleSource(), false)

	rec := env.do(t, http.MethodPost, "/refresh", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestedProps(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api?props=elements,%20incomplete&props=&props=nuclides", nil)
	assert.Equal(t, []string{"elements", "incomplete", "nuclides"}, requestedProps(req))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 200))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
