// hypermedia.go — RFC 8288 Link header hypermedia: state-dependent
// actions and pagination envelopes.
//
// Response bodies implement Actor or Pager; LinkTransformer reads both
// and emits the corresponding Link headers at runtime.
package humastar

import "fmt"

// Action is a state-dependent hypermedia action link.
//
// Example Link header output:
//
//	<url>; rel="invalidate"; method="POST"; title="Reload from disk"
type Action struct {
	Rel    string // IANA rel or custom (e.g., "invalidate")
	Href   string // target URL
	Method string // HTTP method: POST, PUT, DELETE, etc.
	Title  string // optional human-readable label
	Schema string // optional JSON Schema URL for the request body
}

// Actor is implemented by response bodies that provide state-dependent actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as an RFC 8288 Link header value
// with method and title extension parameters.
func (a Action) LinkHeader() string {
	h := fmt.Sprintf(`<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		h += fmt.Sprintf(`; method="%s"`, a.Method)
	}
	if a.Title != "" {
		h += fmt.Sprintf(`; title="%s"`, a.Title)
	}
	if a.Schema != "" {
		h += fmt.Sprintf(`; schema="%s"`, a.Schema)
	}
	return h
}

// ActionDef is a reusable action template. Pattern uses a single %s
// verb for the resource ID.
type ActionDef struct {
	Rel     string
	Pattern string // URL pattern with %s placeholder
	Method  string
	Title   string
	Schema  string
}

// ActionsFor generates concrete Action values from ActionDefs for a given resource ID.
func ActionsFor(id string, defs []ActionDef) []Action {
	actions := make([]Action, len(defs))
	for i, d := range defs {
		actions[i] = Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, id),
			Method: d.Method,
			Title:  d.Title,
			Schema: d.Schema,
		}
	}
	return actions
}

// Pager is implemented by response bodies that carry pagination metadata.
type Pager interface {
	PaginationLinks(basePath string) []string
}

// PageBody is a generic paginated response envelope.
// Any handler returning PageBody[T] gets automatic pagination Link headers.
type PageBody[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Current offset"`
	Limit  int `json:"limit" doc:"Page size"`
	Data   []T `json:"data" doc:"Items"`
}

// PaginationLinks returns RFC 8288 Link header values for the
// first/prev/next/last pagination rels.
func (p PageBody[T]) PaginationLinks(basePath string) []string {
	var links []string

	links = append(links, fmt.Sprintf(`<%s?offset=0&limit=%d>; rel="first"`, basePath, p.Limit))

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="prev"`, basePath, prev, p.Limit))
	}

	if p.Offset+p.Limit < p.Total {
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="next"`, basePath, p.Offset+p.Limit, p.Limit))
	}

	lastOffset := ((p.Total - 1) / p.Limit) * p.Limit
	if lastOffset < 0 {
		lastOffset = 0
	}
	links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="last"`, basePath, lastOffset, p.Limit))

	return links
}
