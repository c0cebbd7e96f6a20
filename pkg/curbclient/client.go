// Package curbclient is a typed HTTP client for the curbmap API.
//
// Response types mirror the wire format; layer specs inside a bundle
// pass through as raw JSON because their schema belongs to the
// renderer, not the caller.
package curbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to a curbmap server.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the given base URL, e.g. "http://localhost:8090".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response, decoded from the problem document
// when the server sent one.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		return fmt.Sprintf("curbmap: status %d", e.Status)
	}
	return fmt.Sprintf("curbmap: %s (status %d)", msg, e.Status)
}

// RGBA is a display color as the API serializes it.
type RGBA [4]int

// Health is the health check response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Info describes the running service.
type Info struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DataDir  string   `json:"data_dir"`
	Datasets int      `json:"datasets"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

// Dataset describes a registered dataset and whether its file loads.
type Dataset struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	Kind      string `json:"kind"`
	Fill      RGBA   `json:"fill"`
	Line      RGBA   `json:"line"`
	Tooltip   string `json:"tooltip,omitempty"`
	Size      string `json:"size,omitempty"`
	Available bool   `json:"available"`
	Features  int    `json:"features"`
}

// Preview is a page of attribute rows without geometry.
type Preview struct {
	Dataset string           `json:"dataset"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
}

// Column is one attribute column of a dataset.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Range is the numeric extent of one column.
type Range struct {
	Dataset string  `json:"dataset"`
	Column  string  `json:"column"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Stop is one searchable transit stop.
type Stop struct {
	Label string  `json:"label"`
	Mode  string  `json:"mode"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Lines int     `json:"lines"`
}

// StopsPage is one page of transit stop results.
type StopsPage struct {
	Total  int    `json:"total"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Data   []Stop `json:"data"`
}

// ViewState is the initial camera for a bundle.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
	Bearing   float64 `json:"bearing"`
}

// Tooltip is the hover caption wiring for a bundle.
type Tooltip struct {
	HTML string `json:"html,omitempty"`
	Text string `json:"text,omitempty"`
}

// LegendItem is one labeled swatch.
type LegendItem struct {
	Label string `json:"label"`
	Color RGBA   `json:"color"`
}

// LegendRamp is a continuous color scale.
type LegendRamp struct {
	Stops    []RGBA `json:"stops"`
	MinLabel string `json:"minLabel"`
	MaxLabel string `json:"maxLabel"`
}

// Legend is one sidebar legend block.
type Legend struct {
	Title string       `json:"title"`
	Note  string       `json:"note,omitempty"`
	Items []LegendItem `json:"items,omitempty"`
	Ramp  *LegendRamp  `json:"ramp,omitempty"`
}

// Bundle is everything the dashboard renders for one selection.
type Bundle struct {
	Layers  []json.RawMessage `json:"layers"`
	View    ViewState         `json:"view"`
	Tooltip *Tooltip          `json:"tooltip,omitempty"`
	Legends []Legend          `json:"legends,omitempty"`
	Errors  []string          `json:"errors,omitempty"`
}

// QueryResult is the response to a SQL query.
type QueryResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
}

// Health checks the service.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.get(ctx, "/api/v1/health", nil, &out)
	return out, err
}

// Info returns service metadata.
func (c *Client) Info(ctx context.Context) (Info, error) {
	var out Info
	err := c.get(ctx, "/api/v1/info", nil, &out)
	return out, err
}

// Datasets lists every registered dataset.
func (c *Client) Datasets(ctx context.Context) ([]Dataset, error) {
	var out []Dataset
	err := c.get(ctx, "/api/v1/datasets", nil, &out)
	return out, err
}

// Dataset returns one dataset by display name.
func (c *Client) Dataset(ctx context.Context, name string) (Dataset, error) {
	var out Dataset
	err := c.get(ctx, "/api/v1/datasets/"+url.PathEscape(name), nil, &out)
	return out, err
}

// Preview returns up to limit attribute rows of a dataset. A limit of
// zero uses the server default.
func (c *Client) Preview(ctx context.Context, name string, limit int) (Preview, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out Preview
	err := c.get(ctx, "/api/v1/datasets/"+url.PathEscape(name)+"/preview", q, &out)
	return out, err
}

// Columns lists the attribute columns of a dataset.
func (c *Client) Columns(ctx context.Context, name string) ([]Column, error) {
	var out struct {
		Columns []Column `json:"columns"`
	}
	err := c.get(ctx, "/api/v1/datasets/"+url.PathEscape(name)+"/columns", nil, &out)
	return out.Columns, err
}

// Range returns the numeric extent of one column.
func (c *Client) Range(ctx context.Context, name, column string) (Range, error) {
	q := url.Values{}
	q.Set("column", column)
	var out Range
	err := c.get(ctx, "/api/v1/datasets/"+url.PathEscape(name)+"/range", q, &out)
	return out, err
}

// Invalidate drops a dataset's caches so the next read hits disk.
func (c *Client) Invalidate(ctx context.Context, name string) error {
	return c.post(ctx, "/api/v1/datasets/"+url.PathEscape(name)+"/invalidate", nil, nil)
}

// Bundle builds the render bundle for the named layers and optional
// focus stop.
func (c *Client) Bundle(ctx context.Context, layers []string, stop string) (Bundle, error) {
	q := url.Values{}
	if len(layers) > 0 {
		q.Set("layers", strings.Join(layers, ","))
	}
	if stop != "" {
		q.Set("stop", stop)
	}
	var out Bundle
	err := c.get(ctx, "/api/v1/map/bundle", q, &out)
	return out, err
}

// Stops searches transit stops by substring.
func (c *Client) Stops(ctx context.Context, query string, offset, limit int) (StopsPage, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out StopsPage
	err := c.get(ctx, "/api/v1/transit/stops", q, &out)
	return out, err
}

// Tables lists the attribute tables built so far.
func (c *Client) Tables(ctx context.Context) ([]string, error) {
	var out struct {
		Tables []string `json:"tables"`
	}
	err := c.get(ctx, "/api/v1/db/tables", nil, &out)
	return out.Tables, err
}

// Query runs a SQL query against the attribute database.
func (c *Client) Query(ctx context.Context, sql string) (QueryResult, error) {
	body := map[string]string{"query": sql}
	var out QueryResult
	err := c.post(ctx, "/api/v1/db/query", body, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
