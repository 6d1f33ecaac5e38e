package spotify

import (
	"fmt"
	"math"
	"strings"
	"time"

	"vinylvault/internal/domain/model"
)

// Wire types for the slices of the upstream payloads this adapter reads.
// Fields absent from a response decode to their zero value; duration_ms in
// particular counts as 0 when missing.

type artistJSON struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type artistRefJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type trackJSON struct {
	DurationMS int64 `json:"duration_ms"`
}

type imageJSON struct {
	URL string `json:"url"`
}

type albumJSON struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	AlbumType            string          `json:"album_type"`
	TotalTracks          int             `json:"total_tracks"`
	Artists              []artistRefJSON `json:"artists"`
	ReleaseDate          string          `json:"release_date"`
	ReleaseDatePrecision string          `json:"release_date_precision"`
	Images               []imageJSON     `json:"images"`
	Tracks               struct {
		Items []trackJSON `json:"items"`
	} `json:"tracks"`
}

type searchJSON struct {
	Albums struct {
		Items []albumJSON `json:"items"`
	} `json:"albums"`
}

type recommendationsJSON struct {
	Tracks []recTrackJSON `json:"tracks"`
}

type recTrackJSON struct {
	Album struct {
		Name        string      `json:"name"`
		ReleaseDate string      `json:"release_date"`
		Images      []imageJSON `json:"images"`
	} `json:"album"`
	Artists []artistRefJSON `json:"artists"`
}

// mapAlbum converts an upstream album payload to its normalized import
// form. An album without artist references cannot be ingested (it would
// have no primary artist) and fails validation.
func mapAlbum(a albumJSON) (*model.AlbumImport, error) {
	if len(a.Artists) == 0 {
		return nil, fmt.Errorf("no artist references: %w", model.ErrValidation)
	}

	releaseDate, err := parseReleaseDate(a.ReleaseDate, a.ReleaseDatePrecision)
	if err != nil {
		return nil, err
	}

	artists := make([]model.ArtistRef, 0, len(a.Artists))
	for _, ref := range a.Artists {
		artists = append(artists, model.ArtistRef{SpotifyID: ref.ID, Name: ref.Name})
	}

	return &model.AlbumImport{
		Title:          a.Name,
		AlbumType:      a.AlbumType,
		TrackCount:     a.TotalTracks,
		RuntimeSeconds: runtimeSeconds(a.Tracks.Items),
		ReleaseDate:    releaseDate,
		ArtURL:         firstImageURL(a.Images),
		Artists:        artists,
	}, nil
}

// mapSearchResult converts one search page entry to a cleaned summary.
func mapSearchResult(a albumJSON) (model.SearchResult, error) {
	releaseDate, err := parseReleaseDate(a.ReleaseDate, a.ReleaseDatePrecision)
	if err != nil {
		return model.SearchResult{}, err
	}

	names := make([]string, 0, len(a.Artists))
	for _, ref := range a.Artists {
		names = append(names, ref.Name)
	}

	return model.SearchResult{
		SpotifyID:   a.ID,
		Title:       a.Name,
		ArtistNames: strings.Join(names, ", "),
		ReleaseDate: releaseDate,
		ArtURL:      firstImageURL(a.Images),
	}, nil
}

// mapRecommendation converts one recommended track to its album summary.
// Release dates pass through unparsed; recommendations are display-only.
func mapRecommendation(t recTrackJSON) model.Recommendation {
	names := make([]string, 0, len(t.Artists))
	for _, ref := range t.Artists {
		names = append(names, ref.Name)
	}

	return model.Recommendation{
		AlbumTitle:  t.Album.Name,
		ArtistNames: strings.Join(names, ", "),
		ReleaseDate: t.Album.ReleaseDate,
		ArtURL:      firstImageURL(t.Album.Images),
	}
}

// runtimeSeconds sums track durations and rounds to whole seconds, half
// away from zero. An empty track list yields 0.
func runtimeSeconds(tracks []trackJSON) int {
	var totalMS int64
	for _, t := range tracks {
		totalMS += t.DurationMS
	}
	return int(math.Round(float64(totalMS) / 1000))
}

// parseReleaseDate normalizes an upstream (value, precision) pair to a
// calendar date: year precision pins Jan 1, month precision pins the first
// of the month, day precision is taken as given. Any other precision, or a
// value that does not match its precision's layout, fails validation.
func parseReleaseDate(value, precision string) (time.Time, error) {
	var layout string
	switch precision {
	case "year":
		layout = "2006"
	case "month":
		layout = "2006-01"
	case "day":
		layout = "2006-01-02"
	default:
		return time.Time{}, fmt.Errorf("release date precision %q: %w", precision, model.ErrValidation)
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("release date %q with precision %q: %w", value, precision, model.ErrValidation)
	}

	return t, nil
}

// firstImageURL returns the first image URL in the upstream list, or empty
// when the list is empty.
func firstImageURL(images []imageJSON) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
