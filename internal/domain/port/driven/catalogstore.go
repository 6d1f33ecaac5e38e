package driven

import (
	"context"
	"errors"

	"vinylvault/internal/domain/model"
)

// Sentinel errors returned by CatalogStore implementations.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("row not found")

	// ErrDuplicateKey indicates an insert violated a natural-key unique
	// constraint; another writer created the row first.
	ErrDuplicateKey = errors.New("duplicate natural key")
)

// EntityWriter is the slice of catalog persistence needed to resolve
// artists, genres, and tags by natural key. Insert methods return
// ErrDuplicateKey when the key already exists so callers can re-fetch the
// winning row; lookup methods return ErrNotFound when the key is absent.
type EntityWriter interface {
	InsertArtist(ctx context.Context, spotifyID, name string) (int64, error)
	ArtistIDBySpotifyID(ctx context.Context, spotifyID string) (int64, error)

	InsertGenre(ctx context.Context, name string) (int64, error)
	GenreIDByName(ctx context.Context, name string) (int64, error)

	InsertTag(ctx context.Context, name string) (int64, error)
	TagIDByName(ctx context.Context, name string) (int64, error)
}

// CatalogTx is the write surface available inside one catalog transaction.
// Assign methods are idempotent: inserting an already-present join pair is
// a no-op, not an error.
type CatalogTx interface {
	EntityWriter

	// InsertAlbum appends an album row. Returns ErrDuplicateKey if an album
	// with the same spotify id already exists.
	InsertAlbum(ctx context.Context, album model.Album) (int64, error)

	AssignArtistGenre(ctx context.Context, artistID, genreID int64) error
	AssignAlbumTag(ctx context.Context, albumID, tagID int64) error
}

// CatalogStore defines the driven port for catalog persistence.
type CatalogStore interface {
	// Snapshot loads used to seed entity resolution at pipeline start.
	ArtistIDsBySpotifyID(ctx context.Context) (map[string]int64, error)
	GenreIDsByName(ctx context.Context) (map[string]int64, error)
	TagIDsByName(ctx context.Context) (map[string]int64, error)

	// AlbumBySpotifyID returns nil, nil when no album has that spotify id.
	AlbumBySpotifyID(ctx context.Context, spotifyID string) (*model.Album, error)

	// ListAlbums returns the whole collection joined with primary artist
	// names, ordered by title.
	ListAlbums(ctx context.Context) ([]model.AlbumSummary, error)

	// AlbumDetail returns one album with its artist name and the artist's
	// genre names sorted alphabetically. Returns nil, nil when absent.
	AlbumDetail(ctx context.Context, albumID int64) (*model.AlbumDetail, error)

	// RandomArtistSeeds and RandomGenreSeeds return up to n natural keys
	// sampled from the stored collection, for recommendation seeding.
	RandomArtistSeeds(ctx context.Context, n int) ([]string, error)
	RandomGenreSeeds(ctx context.Context, n int) ([]string, error)

	// InTx runs fn inside one write transaction. The transaction commits
	// when fn returns nil and rolls back when it returns an error; the
	// underlying resource is released on every exit path.
	InTx(ctx context.Context, fn func(tx CatalogTx) error) error
}
