package model

import "time"

// ArtistRef is an artist reference as it appears on an upstream album
// payload: the external id plus a display name.
type ArtistRef struct {
	SpotifyID string
	Name      string
}

// AlbumImport is the normalized form of an upstream album payload, ready
// for ingestion. Artists preserves upstream order; the first entry is the
// primary artist.
type AlbumImport struct {
	Title          string
	AlbumType      string
	TrackCount     int
	RuntimeSeconds int
	ReleaseDate    time.Time
	ArtURL         string
	Artists        []ArtistRef
}

// ArtistProfile is the normalized form of an upstream artist payload.
type ArtistProfile struct {
	SpotifyID string
	Name      string
	Genres    []string
}

// SearchResult is one cleaned album summary from an upstream search page.
type SearchResult struct {
	SpotifyID   string
	Title       string
	ArtistNames string // Comma-joined upstream artist names.
	ReleaseDate time.Time
	ArtURL      string
}

// Recommendation is one suggested album from the upstream recommendations
// endpoint. ReleaseDate is passed through as upstream supplies it, since
// recommendation rows are display-only and never ingested.
type Recommendation struct {
	AlbumTitle  string
	ArtistNames string
	ReleaseDate string
	ArtURL      string
}
