package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/text/language"
)

// LanguageLister lists the language codes tables can be requested in.
type LanguageLister interface {
	AvailableLanguages(ctx context.Context) ([]string, error)
}

// languageRetry is how long a failed language lookup is remembered before
// the list is fetched again.
const languageRetry = time.Minute

// Negotiator picks the table language of a request: the lang query parameter
// first, then the best Accept-Language match among the available languages,
// then the default.
type Negotiator struct {
	lister      LanguageLister
	defaultLang string

	mu       sync.Mutex
	codes    []string
	matcher  language.Matcher
	failedAt time.Time
}

// NewNegotiator creates a negotiator. lister may be nil, in which case only
// the query parameter and the default are consulted.
func NewNegotiator(lister LanguageLister, defaultLang string) *Negotiator {
	return &Negotiator{lister: lister, defaultLang: defaultLang}
}

// Language returns the language for r.
func (n *Negotiator) Language(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}

	header := r.Header.Get("Accept-Language")
	if header == "" {
		return n.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return n.defaultLang
	}

	codes, matcher := n.load(r.Context())
	if matcher == nil {
		return n.defaultLang
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return n.defaultLang
	}
	return codes[index]
}

// load returns the available languages and their matcher, fetching them on
// first use. A nil matcher means the list is unavailable.
func (n *Negotiator) load(ctx context.Context) ([]string, language.Matcher) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.matcher != nil || n.lister == nil {
		return n.codes, n.matcher
	}
	if !n.failedAt.IsZero() && time.Since(n.failedAt) < languageRetry {
		return nil, nil
	}

	available, err := n.lister.AvailableLanguages(ctx)
	if err != nil {
		slog.Warn("failed to list available languages", "error", err)
		n.failedAt = time.Now()
		return nil, nil
	}

	// Wikidata lists some codes x/text cannot parse; those are never matched
	var codes []string
	var tags []language.Tag
	for _, code := range available {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		codes = append(codes, code)
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		n.failedAt = time.Now()
		return nil, nil
	}

	n.codes = codes
	n.matcher = language.NewMatcher(tags)
	slog.Debug("available languages loaded", "count", len(codes))
	return n.codes, n.matcher
}
