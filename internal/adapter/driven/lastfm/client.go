// Package lastfm implements the TagSource port over the Last.fm
// album.getTopTags endpoint.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Compile-time interface satisfaction check.
var _ driven.TagSource = (*Client)(nil)

// Client fetches descriptive album tags from Last.fm. It needs only an API
// key; tag lookups are unauthenticated beyond that.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a new tag source client bounded by the given timeout.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

// NewClientWithBaseURL creates a Client against a custom base URL. This
// constructor is intended for testing.
func NewClientWithBaseURL(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// AlbumTags returns the tag names attached to the given album, most
// popular first as Last.fm orders them.
func (c *Client) AlbumTags(ctx context.Context, albumTitle, artistName string) ([]string, error) {
	params := url.Values{
		"method":  {"album.gettoptags"},
		"artist":  {artistName},
		"album":   {albumTitle},
		"api_key": {c.apiKey},
		"format":  {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build tag request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tags for %q: %w", albumTitle, errors.Join(model.ErrUpstream, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tags for %q: status %d: %w", albumTitle, resp.StatusCode, model.ErrUpstream)
	}

	var payload struct {
		Error   int    `json:"error"`
		Message string `json:"message"`
		TopTags struct {
			Tag []struct {
				Name string `json:"name"`
			} `json:"tag"`
		} `json:"toptags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tags for %q: %w", albumTitle, errors.Join(model.ErrValidation, err))
	}

	// Last.fm reports API-level failures inside a 200 body.
	if payload.Error != 0 {
		return nil, fmt.Errorf("fetch tags for %q: api error %d (%s): %w",
			albumTitle, payload.Error, payload.Message, model.ErrUpstream)
	}

	tags := make([]string, 0, len(payload.TopTags.Tag))
	for _, tag := range payload.TopTags.Tag {
		tags = append(tags, tag.Name)
	}

	return tags, nil
}
