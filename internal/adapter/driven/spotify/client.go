// Package spotify implements the SpotifyClient port against the upstream
// metadata Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Compile-time interface satisfaction check.
var _ driven.SpotifyClient = (*Client)(nil)

// Client implements the driven.SpotifyClient port over plain HTTP/JSON.
// Responses flow through an in-memory httpcache transport so repeated
// lookups of the same album or artist become conditional requests.
type Client struct {
	http     *http.Client
	baseURL  string
	tokenURL string
}

// NewClient creates a new upstream API client. Every call is bounded by
// the given timeout; a timeout is reported as an upstream failure and is
// not retried.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: httpcache.NewMemoryCacheTransport(),
		},
		baseURL:  defaultBaseURL,
		tokenURL: defaultTokenURL,
	}
}

// NewClientWithBaseURL creates a Client with a custom http.Client and base
// URLs. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL, tokenURL string) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokenURL: tokenURL,
	}
}

// RequestToken performs a client_credentials grant against the token
// endpoint and returns the issued token with its lifetime.
func (c *Client) RequestToken(ctx context.Context, clientID, clientSecret string) (model.TokenGrant, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return model.TokenGrant{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.TokenGrant{}, fmt.Errorf("token request: %w", errors.Join(model.ErrUpstream, err))
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return model.TokenGrant{}, fmt.Errorf("token request: status %d: %w", resp.StatusCode, model.ErrUpstream)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.TokenGrant{}, fmt.Errorf("decode token response: %w", errors.Join(model.ErrValidation, err))
	}
	if payload.AccessToken == "" {
		return model.TokenGrant{}, fmt.Errorf("token response missing access_token: %w", model.ErrValidation)
	}

	return model.TokenGrant{AccessToken: payload.AccessToken, ExpiresIn: payload.ExpiresIn}, nil
}

// FetchAlbum retrieves one album by id and returns its normalized form.
func (c *Client) FetchAlbum(ctx context.Context, token, albumID string) (*model.AlbumImport, error) {
	var payload albumJSON
	if err := c.getJSON(ctx, token, c.baseURL+"/albums/"+url.PathEscape(albumID), &payload); err != nil {
		return nil, err
	}

	imp, err := mapAlbum(payload)
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", albumID, err)
	}

	slog.Debug("album fetched", "album_id", albumID, "artists", len(imp.Artists), "tracks", imp.TrackCount)
	return imp, nil
}

// FetchArtist retrieves one artist by id and returns its normalized form.
func (c *Client) FetchArtist(ctx context.Context, token, artistID string) (*model.ArtistProfile, error) {
	var payload artistJSON
	if err := c.getJSON(ctx, token, c.baseURL+"/artists/"+url.PathEscape(artistID), &payload); err != nil {
		return nil, err
	}

	slog.Debug("artist fetched", "artist_id", artistID, "genres", len(payload.Genres))
	return &model.ArtistProfile{
		SpotifyID: payload.ID,
		Name:      payload.Name,
		Genres:    payload.Genres,
	}, nil
}

// SearchAlbums returns one page of cleaned album summaries for a free text
// query.
func (c *Client) SearchAlbums(ctx context.Context, token, query string) ([]model.SearchResult, error) {
	params := url.Values{
		"q":    {query},
		"type": {"album"},
	}

	var payload searchJSON
	if err := c.getJSON(ctx, token, c.baseURL+"/search?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(payload.Albums.Items))
	for _, item := range payload.Albums.Items {
		result, err := mapSearchResult(item)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// FetchRecommendations returns suggested albums seeded by stored artist
// ids and genre names.
func (c *Client) FetchRecommendations(ctx context.Context, token string, artistSeeds, genreSeeds []string) ([]model.Recommendation, error) {
	params := url.Values{
		"seed_artists": {strings.Join(artistSeeds, ",")},
		"seed_genres":  {strings.Join(genreSeeds, ",")},
	}

	var payload recommendationsJSON
	if err := c.getJSON(ctx, token, c.baseURL+"/recommendations?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	recs := make([]model.Recommendation, 0, len(payload.Tracks))
	for _, track := range payload.Tracks {
		recs = append(recs, mapRecommendation(track))
	}

	return recs, nil
}

// getJSON performs a bearer-authenticated GET and decodes the 2xx body
// into v.
func (c *Client) getJSON(ctx context.Context, token, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", rawURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", rawURL, errors.Join(model.ErrUpstream, err))
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return fmt.Errorf("call %s: status %d: %w", rawURL, resp.StatusCode, model.ErrUpstream)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, errors.Join(model.ErrValidation, err))
	}

	return nil
}

func is2xx(status int) bool {
	return status >= 200 && status <= 299
}
