package model

import "time"

// Album is a catalog album row. SpotifyID is the natural key; ArtistID
// references the album's primary artist (the first artist listed upstream).
type Album struct {
	ID             int64
	ArtistID       int64
	SpotifyID      string
	AlbumType      string
	Title          string
	ReleaseDate    time.Time
	TrackCount     int
	RuntimeSeconds int
	ArtURL         string // Empty when upstream supplied no images.
}

// AlbumSummary is the collection-listing projection of an album joined with
// its primary artist's name.
type AlbumSummary struct {
	ID          int64
	Title       string
	ArtistName  string
	ReleaseDate time.Time
	ArtURL      string
}

// AlbumDetail is the full single-album projection: the album row, its
// primary artist's name, and that artist's genre names sorted
// alphabetically.
type AlbumDetail struct {
	Album
	ArtistName string
	Genres     []string
}
