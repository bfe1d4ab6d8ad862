// Package fetch loads schema documents referenced by URI.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/oarkflow/jsonschema/jsonmap"
)

// ErrNotFound is returned when a fetcher has no document for a URI.
var ErrNotFound = errors.New("document not found")

// Fetcher retrieves the parsed document identified by an absolute URI
// without fragment.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (any, error)
}

type FetcherFunc func(ctx context.Context, uri string) (any, error)

func (f FetcherFunc) Fetch(ctx context.Context, uri string) (any, error) { return f(ctx, uri) }

// Parse decodes JSON or, when name ends in .yaml/.yml, YAML.
func Parse(name string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	}
	return jsonmap.Decode(data)
}

func parseYAML(data []byte) (any, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return jsonmap.Decode(js)
}

// HTTPFetcher fetches http and https URIs.
type HTTPFetcher struct {
	Client *http.Client
}

// HTTP returns a fetcher using client, or a client with a five second
// timeout when client is nil.
func HTTP(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPFetcher{Client: client}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, uri string) (any, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrNotFound, u.Scheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9")
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote schema from '%s': %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch remote schema from '%s': status %s", uri, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote schema from '%s': %w", uri, err)
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		return parseYAML(body)
	}
	return Parse(u.Path, body)
}

// File fetches file:// URIs from the local filesystem.
func File() Fetcher {
	return FetcherFunc(func(_ context.Context, uri string) (any, error) {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, err
		}
		if u.Scheme != "file" {
			return nil, fmt.Errorf("%w: unsupported scheme %q", ErrNotFound, u.Scheme)
		}
		path := filepath.FromSlash(u.Path)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
		}
		if err != nil {
			return nil, err
		}
		return Parse(path, data)
	})
}

// Map serves documents from memory. Keys are URIs without fragment.
type Map map[string]any

func (m Map) Fetch(_ context.Context, uri string) (any, error) {
	doc, ok := m[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return doc, nil
}

// Chain tries each fetcher in order and returns the first document found.
// Errors other than ErrNotFound stop the search.
func Chain(fetchers ...Fetcher) Fetcher {
	return FetcherFunc(func(ctx context.Context, uri string) (any, error) {
		for _, f := range fetchers {
			if f == nil {
				continue
			}
			doc, err := f.Fetch(ctx, uri)
			if err == nil {
				return doc, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	})
}
