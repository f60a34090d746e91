package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Entity is the subset of a wbgetentities entity the providers read.
type Entity struct {
	ID     string                   `json:"id"`
	Labels map[string]LanguageValue `json:"labels"`
	Claims map[string][]Claim       `json:"claims"`
}

// LanguageValue is a label in one language.
type LanguageValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Claim is a statement on an entity.
type Claim struct {
	MainSnak Snak `json:"mainsnak"`
}

// Snak holds the value of a claim. DataValue is nil for novalue and
// somevalue snaks.
type Snak struct {
	SnakType  string     `json:"snaktype"`
	DataValue *DataValue `json:"datavalue"`
}

// DataValue is a typed claim value; Value is decoded according to Type.
type DataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Label returns the entity label when exactly one language was returned.
// With language fallback enabled the API returns at most one label per
// requested language, so anything else is ambiguous.
func (e Entity) Label() (string, bool) {
	if len(e.Labels) != 1 {
		return "", false
	}
	for _, l := range e.Labels {
		return l.Value, true
	}
	return "", false
}

// Text decodes the value of a string claim.
func (c Claim) Text() (string, error) {
	if c.MainSnak.DataValue == nil {
		return "", fmt.Errorf("claim has no value")
	}
	var s string
	if err := json.Unmarshal(c.MainSnak.DataValue.Value, &s); err != nil {
		return "", fmt.Errorf("decode string claim: %w", err)
	}
	return s, nil
}

// Quantity decodes the amount of a quantity claim.
func (c Claim) Quantity() (string, error) {
	if c.MainSnak.DataValue == nil {
		return "", fmt.Errorf("claim has no value")
	}
	var q struct {
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(c.MainSnak.DataValue.Value, &q); err != nil {
		return "", fmt.Errorf("decode quantity claim: %w", err)
	}
	return q.Amount, nil
}

// ItemID decodes the numeric id of an item claim.
func (c Claim) ItemID() (int64, error) {
	if c.MainSnak.DataValue == nil {
		return 0, fmt.Errorf("claim has no value")
	}
	var v struct {
		NumericID int64 `json:"numeric-id"`
	}
	if err := json.Unmarshal(c.MainSnak.DataValue.Value, &v); err != nil {
		return 0, fmt.Errorf("decode item claim: %w", err)
	}
	return v.NumericID, nil
}

// GetEntities fetches entities by id with wbgetentities, APILimit ids per
// call. params carries extra API parameters such as props or languages.
func (c *Client) GetEntities(ctx context.Context, ids []string, params url.Values) (map[string]Entity, error) {
	entities := make(map[string]Entity, len(ids))
	for batch := range slices.Chunk(ids, APILimit) {
		query := url.Values{
			"action": {"wbgetentities"},
			"ids":    {strings.Join(batch, "|")},
		}
		maps.Copy(query, params)

		var resp struct {
			Entities map[string]Entity `json:"entities"`
		}
		if err := c.api(ctx, query, &resp); err != nil {
			return nil, fmt.Errorf("get entities: %w", err)
		}
		maps.Copy(entities, resp.Entities)
	}
	return entities, nil
}

// AvailableLanguages returns the language codes Wikidata has labels for.
func (c *Client) AvailableLanguages(ctx context.Context) ([]string, error) {
	query := url.Values{
		"action": {"query"},
		"meta":   {"siteinfo"},
		"siprop": {"languages"},
	}
	var resp struct {
		Query struct {
			Languages []struct {
				Code string `json:"code"`
			} `json:"languages"`
		} `json:"query"`
	}
	if err := c.api(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("get languages: %w", err)
	}

	codes := make([]string, 0, len(resp.Query.Languages))
	for _, l := range resp.Query.Languages {
		codes = append(codes, l.Code)
	}
	return codes, nil
}

// Backlinks returns the titles of main namespace pages linking to title.
func (c *Client) Backlinks(ctx context.Context, title string) ([]string, error) {
	query := url.Values{
		"action":         {"query"},
		"generator":      {"backlinks"},
		"gblnamespace":   {"0"},
		"gbllimit":       {"max"},
		"gbltitle":       {title},
		"gblfilterredir": {"nonredirects"},
		"prop":           {""},
	}
	var resp struct {
		Query struct {
			Pages map[string]struct {
				Title string `json:"title"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.api(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("get backlinks: %w", err)
	}

	titles := make([]string, 0, len(resp.Query.Pages))
	for _, p := range resp.Query.Pages {
		titles = append(titles, p.Title)
	}
	slices.Sort(titles)
	return titles, nil
}
