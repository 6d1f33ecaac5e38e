package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

// errAlbumRaced marks an album insert that lost a race with a concurrent
// ingestion of the same album. It never escapes AddAlbum.
var errAlbumRaced = errors.New("album created concurrently")

// IngestResult reports what one AddAlbum call did. Enrichment is non-fatal
// by contract, so its failure travels here instead of the error return.
type IngestResult struct {
	AlbumID        int64
	AlreadyPresent bool  // The album existed before this call; nothing was written.
	NewArtists     int   // Artist rows created by this call.
	TagsApplied    int   // Album/tag assignments recorded by this call.
	EnrichmentErr  error // Non-fatal tag enrichment failure, nil on success.
}

// IngestService materializes upstream albums into the normalized catalog.
// One AddAlbum call is one logical operation: its writes either all commit
// or none do.
type IngestService struct {
	upstream  driven.SpotifyClient
	catalog   driven.CatalogStore
	tagSource driven.TagSource // nil disables tag enrichment
}

// NewIngestService creates an IngestService. tagSource may be nil, which
// disables the enrichment step.
func NewIngestService(upstream driven.SpotifyClient, catalog driven.CatalogStore, tagSource driven.TagSource) *IngestService {
	return &IngestService{
		upstream:  upstream,
		catalog:   catalog,
		tagSource: tagSource,
	}
}

// AddAlbum ingests the album with the given spotify id using token for all
// upstream calls. Re-adding an album that is already stored is a no-op.
//
// The fetch, artist/genre resolution, and album insert form one
// transaction; any failure there rolls everything back and propagates a
// typed error. Tag enrichment runs after the album has committed and its
// failure is reported in the result, never as the error return.
func (s *IngestService) AddAlbum(ctx context.Context, spotifyAlbumID, token string) (*IngestResult, error) {
	if existing, err := s.catalog.AlbumBySpotifyID(ctx, spotifyAlbumID); err != nil {
		return nil, err
	} else if existing != nil {
		slog.Info("album already in collection", "album_id", spotifyAlbumID)
		return &IngestResult{AlbumID: existing.ID, AlreadyPresent: true}, nil
	}

	imp, err := s.upstream.FetchAlbum(ctx, token, spotifyAlbumID)
	if err != nil {
		return nil, err
	}

	cache, err := LoadEntityCache(ctx, s.catalog)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{}
	err = s.catalog.InTx(ctx, func(tx driven.CatalogTx) error {
		var primaryArtistID int64
		for i, ref := range imp.Artists {
			artistID, err := s.resolveArtistWithGenres(ctx, tx, cache, ref, token, result)
			if err != nil {
				return err
			}
			if i == 0 {
				primaryArtistID = artistID
			}
		}

		albumID, err := tx.InsertAlbum(ctx, model.Album{
			ArtistID:       primaryArtistID,
			SpotifyID:      spotifyAlbumID,
			AlbumType:      imp.AlbumType,
			Title:          imp.Title,
			ReleaseDate:    imp.ReleaseDate,
			TrackCount:     imp.TrackCount,
			RuntimeSeconds: imp.RuntimeSeconds,
			ArtURL:         imp.ArtURL,
		})
		if errors.Is(err, driven.ErrDuplicateKey) {
			return errAlbumRaced
		}
		if err != nil {
			return err
		}

		result.AlbumID = albumID
		return nil
	})
	if errors.Is(err, errAlbumRaced) {
		// A concurrent ingestion committed the same album first. Our
		// transaction rolled back; theirs is the canonical state.
		existing, lookupErr := s.catalog.AlbumBySpotifyID(ctx, spotifyAlbumID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, fmt.Errorf("album %s vanished after duplicate key: %w", spotifyAlbumID, model.ErrConflict)
		}
		slog.Info("album ingested concurrently elsewhere", "album_id", spotifyAlbumID)
		return &IngestResult{AlbumID: existing.ID, AlreadyPresent: true}, nil
	}
	if err != nil {
		return nil, err
	}

	slog.Info("album ingested",
		"album_id", spotifyAlbumID,
		"title", imp.Title,
		"new_artists", result.NewArtists,
	)

	s.enrichTags(ctx, cache, imp, result)
	return result, nil
}

// resolveArtistWithGenres resolves one artist reference. Only when the
// artist is newly created does it fetch the artist's profile upstream and
// record genre assignments; a known artist costs no upstream call and no
// new assignments.
func (s *IngestService) resolveArtistWithGenres(
	ctx context.Context,
	tx driven.CatalogTx,
	cache *EntityCache,
	ref model.ArtistRef,
	token string,
	result *IngestResult,
) (int64, error) {
	artistID, created, err := cache.ResolveArtist(ctx, tx, ref.SpotifyID, ref.Name)
	if err != nil {
		return 0, err
	}
	if !created {
		return artistID, nil
	}
	result.NewArtists++

	profile, err := s.upstream.FetchArtist(ctx, token, ref.SpotifyID)
	if err != nil {
		return 0, err
	}

	for _, genre := range profile.Genres {
		genreID, _, err := cache.ResolveGenre(ctx, tx, genre)
		if err != nil {
			return 0, err
		}
		if err := tx.AssignArtistGenre(ctx, artistID, genreID); err != nil {
			return 0, err
		}
	}

	return artistID, nil
}

// enrichTags runs the optional post-commit enrichment step. Failures are
// recorded on the result and logged; the committed album stands regardless.
func (s *IngestService) enrichTags(ctx context.Context, cache *EntityCache, imp *model.AlbumImport, result *IngestResult) {
	if s.tagSource == nil {
		return
	}

	primaryArtist := imp.Artists[0].Name
	tags, err := s.tagSource.AlbumTags(ctx, imp.Title, primaryArtist)
	if err != nil {
		slog.Error("tag enrichment failed", "title", imp.Title, "error", err)
		result.EnrichmentErr = err
		return
	}

	err = s.catalog.InTx(ctx, func(tx driven.CatalogTx) error {
		for _, tag := range tags {
			tagID, _, err := cache.ResolveTag(ctx, tx, tag)
			if err != nil {
				return err
			}
			if err := tx.AssignAlbumTag(ctx, result.AlbumID, tagID); err != nil {
				return err
			}
			result.TagsApplied++
		}
		return nil
	})
	if err != nil {
		slog.Error("tag enrichment failed", "title", imp.Title, "error", err)
		result.TagsApplied = 0
		result.EnrichmentErr = err
		return
	}

	slog.Debug("tags applied", "title", imp.Title, "tags", result.TagsApplied)
}
