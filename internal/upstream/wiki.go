package upstream

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

const maxParagraphs = 5

// WikiClient fetches travel-guide extracts from the Wikivoyage API.
type WikiClient struct {
	base string
	ep   *endpoint
}

func NewWikiClient(base string, opts Options) *WikiClient {
	return &WikiClient{base: base, ep: newEndpoint("wikivoyage", opts)}
}

// Description returns the first five newline-separated paragraphs of the
// page titled title, as plain text. A missing page or empty extract is
// NotFound.
func (c *WikiClient) Description(ctx context.Context, title string) Outcome[string] {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts")
	q.Set("format", "json")
	q.Set("titles", title)
	q.Set("explaintext", "1")

	var resp struct {
		Query *struct {
			Pages map[string]struct {
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.ep.getJSON(ctx, c.base+"?"+q.Encode(), &resp); err != nil {
		return FromError[string](err)
	}
	if resp.Query == nil {
		return Failed[string](fmt.Errorf("%w: wikivoyage: response has no query", ErrUnavailable))
	}

	ids := make([]string, 0, len(resp.Query.Pages))
	for id := range resp.Query.Pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var extract string
	if len(ids) > 0 {
		extract = resp.Query.Pages[ids[0]].Extract
	}

	text := firstParagraphs(stripHTML(extract), maxParagraphs)
	if strings.TrimSpace(text) == "" {
		return Missing[string](fmt.Errorf("%w: wikivoyage: %s", ErrNotFound, title))
	}
	return Found(text)
}

// stripHTML returns the text content of s, dropping any markup left in an
// extract.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

func firstParagraphs(s string, n int) string {
	parts := strings.Split(s, "\n")
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.Join(parts, "\n")
}
