// Package search is the web-search adapter used to gather sports data.
// Results follow the provider's {news_results, organic_results, related_searches} shape.
package search

import "strings"

// Type selects the provider vertical
type Type string

const (
	TypeWeb  Type = ""
	TypeNews Type = "news"
)

// Options for a single search request
type Options struct {
	Type  Type
	Limit int
}

type NewsResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	Date    string `json:"date"`
}

type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

type RelatedSearch struct {
	Query string `json:"query"`
}

// Result is one provider response. Any of the sections may be empty.
type Result struct {
	Query           string          `json:"query"`
	NewsResults     []NewsResult    `json:"news_results,omitempty"`
	OrganicResults  []OrganicResult `json:"organic_results,omitempty"`
	RelatedSearches []RelatedSearch `json:"related_searches,omitempty"`
}

// Empty reports whether the provider returned nothing usable
func (r *Result) Empty() bool {
	return r == nil || (len(r.NewsResults) == 0 && len(r.OrganicResults) == 0)
}

// Texts returns every title and snippet, news first
func (r *Result) Texts() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, 2*(len(r.NewsResults)+len(r.OrganicResults)))
	for _, n := range r.NewsResults {
		out = appendNonEmpty(out, n.Title, n.Snippet)
	}
	for _, o := range r.OrganicResults {
		out = appendNonEmpty(out, o.Title, o.Snippet)
	}
	return out
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

// truncate applies the requested limit to every section
func (r *Result) truncate(limit int) {
	if limit <= 0 {
		return
	}
	if len(r.NewsResults) > limit {
		r.NewsResults = r.NewsResults[:limit]
	}
	if len(r.OrganicResults) > limit {
		r.OrganicResults = r.OrganicResults[:limit]
	}
}
