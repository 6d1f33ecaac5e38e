package application

import (
	"context"
	"errors"
	"fmt"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

// EntityCache resolves artists, genres, and tags to internal ids with at
// most one row per natural key. It is a write-through cache over a
// snapshot loaded at pipeline start: a key found in the snapshot costs no
// store access, an unknown key is inserted once and remembered.
//
// The snapshot is private to one pipeline invocation and is not
// transactionally isolated from concurrent runs, so an insert can lose a
// race with another writer. That surfaces as a duplicate-key error, which
// resolution handles by adopting the winning row's id instead of failing.
type EntityCache struct {
	artists map[string]int64 // spotify artist id -> internal id
	genres  map[string]int64 // genre name -> internal id
	tags    map[string]int64 // tag name -> internal id
}

// NewEntityCache creates a cache over pre-loaded snapshots. Nil maps are
// treated as empty.
func NewEntityCache(artists, genres, tags map[string]int64) *EntityCache {
	if artists == nil {
		artists = make(map[string]int64)
	}
	if genres == nil {
		genres = make(map[string]int64)
	}
	if tags == nil {
		tags = make(map[string]int64)
	}
	return &EntityCache{artists: artists, genres: genres, tags: tags}
}

// LoadEntityCache loads fresh snapshots for all three entity kinds from
// the store.
func LoadEntityCache(ctx context.Context, store driven.CatalogStore) (*EntityCache, error) {
	artists, err := store.ArtistIDsBySpotifyID(ctx)
	if err != nil {
		return nil, err
	}
	genres, err := store.GenreIDsByName(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := store.TagIDsByName(ctx)
	if err != nil {
		return nil, err
	}
	return NewEntityCache(artists, genres, tags), nil
}

// ResolveArtist returns the internal id for the given spotify artist id,
// inserting the artist on first encounter. The second return value reports
// whether this call created the row.
func (c *EntityCache) ResolveArtist(ctx context.Context, w driven.EntityWriter, spotifyID, name string) (int64, bool, error) {
	return c.resolve(c.artists, spotifyID, fmt.Sprintf("artist %s", spotifyID),
		func() (int64, error) { return w.InsertArtist(ctx, spotifyID, name) },
		func() (int64, error) { return w.ArtistIDBySpotifyID(ctx, spotifyID) },
	)
}

// ResolveGenre returns the internal id for the given genre name, inserting
// the genre on first encounter.
func (c *EntityCache) ResolveGenre(ctx context.Context, w driven.EntityWriter, name string) (int64, bool, error) {
	return c.resolve(c.genres, name, fmt.Sprintf("genre %q", name),
		func() (int64, error) { return w.InsertGenre(ctx, name) },
		func() (int64, error) { return w.GenreIDByName(ctx, name) },
	)
}

// ResolveTag returns the internal id for the given tag name, inserting the
// tag on first encounter.
func (c *EntityCache) ResolveTag(ctx context.Context, w driven.EntityWriter, name string) (int64, bool, error) {
	return c.resolve(c.tags, name, fmt.Sprintf("tag %q", name),
		func() (int64, error) { return w.InsertTag(ctx, name) },
		func() (int64, error) { return w.TagIDByName(ctx, name) },
	)
}

// resolve implements the shared cache-then-insert-then-adopt sequence. For
// a fixed snapshot lifetime, resolving the same key twice yields the same
// id and performs at most one insert.
func (c *EntityCache) resolve(snapshot map[string]int64, key, what string, insert, refetch func() (int64, error)) (int64, bool, error) {
	if id, ok := snapshot[key]; ok {
		return id, false, nil
	}

	id, err := insert()
	if errors.Is(err, driven.ErrDuplicateKey) {
		// A concurrent run created the row after our snapshot was taken;
		// adopt its id. A miss here means the row was deleted again in
		// between, which the core cannot repair.
		id, err = refetch()
		if errors.Is(err, driven.ErrNotFound) {
			return 0, false, fmt.Errorf("%s disappeared after duplicate key: %w", what, model.ErrConflict)
		}
		if err != nil {
			return 0, false, err
		}
		snapshot[key] = id
		return id, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	snapshot[key] = id
	return id, true, nil
}
